package layout

import "strings"

// Wrap 使用贪心算法将 text 按单个空格切词后折行。
//
// 连续空格产生的空词会被丢弃；制表符与换行符不做特殊处理，按普通字形参与测量。
// 单个词宽于 maxWidth 时不会在词内拆分，而是独占一行（允许溢出）。空文本返回空切片。
func Wrap(text string, m Measurer, maxWidth float64) []string {
	lines := []string{}
	current := ""
	for _, word := range strings.Split(text, " ") {
		if word == "" {
			continue
		}
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && m.Measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

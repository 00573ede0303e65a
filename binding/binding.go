// Package binding 实现叠字文本中的 ${path} 占位符替换。
//
// 数据通常来自 HTTP 请求体的 data 字段（经 encoding/json 解码），
// 路径支持点号与下标：${user.name}、${items[0].title}。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Caption 把 text 中能解析的占位符替换为 data 中的值，无法解析的保持原样。
// 第二个返回值列出未能解析的路径，供调用方记录。
func Caption(text string, data map[string]any) (string, []string) {
	if len(data) == 0 || !strings.Contains(text, "${") {
		return text, nil
	}
	var missing []string
	out := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		val, ok := Lookup(data, path)
		if !ok {
			missing = append(missing, path)
			return match
		}
		return format(val)
	})
	return out, missing
}

// Placeholders returns the paths referenced by text in order of appearance.
func Placeholders(text string) []string {
	var paths []string
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		paths = append(paths, strings.TrimSpace(m[1]))
	}
	return paths
}

// Lookup 按 a.b[0].c 形式的路径在嵌套的 map / slice 中取值。
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := data
	for _, seg := range strings.Split(path, ".") {
		key, idx, ok := splitSegment(seg)
		if !ok {
			return nil, false
		}
		if key != "" {
			if cur, ok = field(cur, key); !ok {
				return nil, false
			}
		}
		for _, i := range idx {
			if cur, ok = element(cur, i); !ok {
				return nil, false
			}
		}
	}
	return cur, true
}

// splitSegment 拆分 items[0][1] 为 "items" 与 [0 1]。
func splitSegment(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, seg != ""
	}
	key, rest := seg[:open], seg[open:]
	var idx []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idx = append(idx, n)
		rest = rest[end+1:]
	}
	return key, idx, true
}

func field(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[string]string:
		val, ok := m[key]
		return val, ok
	}
	return nil, false
}

func element(v any, i int) (any, bool) {
	switch s := v.(type) {
	case []any:
		if i >= 0 && i < len(s) {
			return s[i], true
		}
	case []string:
		if i >= 0 && i < len(s) {
			return s[i], true
		}
	}
	return nil, false
}

// format 输出值的文本形式；JSON 数字为 float64，整数值不带小数部分。
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

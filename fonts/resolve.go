package fonts

import (
	"github.com/ByLCY/textoverlay/css"
)

// 字体栈中使用的家族名称。
const (
	Primary  = "Roboto"
	Fallback = "DejaVu Sans"
	Emoji    = "Noto Color Emoji"
	Generic  = "sans-serif"
)

// Stack 按优先级挑选字体家族列表，先匹配者胜出：
//  1. Roboto + Noto Color Emoji
//  2. DejaVu Sans + Noto Color Emoji
//  3. Roboto
//  4. DejaVu Sans
//  5. 仅 sans-serif
//
// available 由调用方注入（通常来自 Registry.Families），Stack 本身不读取任何全局状态。
func Stack(available map[string]bool) []string {
	switch {
	case available[Primary] && available[Emoji]:
		return []string{Primary, Emoji, Generic}
	case available[Fallback] && available[Emoji]:
		return []string{Fallback, Emoji, Generic}
	case available[Primary]:
		return []string{Primary, Generic}
	case available[Fallback]:
		return []string{Fallback, Generic}
	default:
		return []string{Generic}
	}
}

// Resolve returns the CSS font-family stack, e.g. `Roboto, "Noto Color Emoji", sans-serif`.
func Resolve(available map[string]bool) string {
	return css.FormatFontStack(Stack(available))
}

// Degraded 报告字体栈中既没有 Roboto 也没有 DejaVu Sans，渲染将退化为内置字体。
func Degraded(stack string) bool {
	families, err := css.ParseFontStack(stack)
	if err != nil {
		return true
	}
	for _, f := range families {
		if f == Primary || f == Fallback {
			return false
		}
	}
	return true
}

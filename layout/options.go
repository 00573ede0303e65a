package layout

import "github.com/ByLCY/textoverlay/errors"

// SanityText 覆盖拉丁字母、变音符号与 emoji，用于在选定字体后立即验证测量是否可用。
const SanityText = "Test ABC İĞÜŞÇÖ 🎉"

// Measurer 负责返回字符串在当前字体栈与字号下的渲染宽度（设备像素，≥ 0）。
// 布局计算只依赖该接口，渲染后端负责提供实现。
type Measurer interface {
	Measure(text string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string) float64

// Measure implements Measurer.
func (f MeasureFunc) Measure(text string) float64 { return f(text) }

// CheckMeasurer 用 SanityText 测量一次；宽度恰好为 0 说明字体栈不可用，返回 FONT_MEASUREMENT 错误。
func CheckMeasurer(m Measurer) error {
	if m == nil {
		return errors.New(errors.ErrCodeFontMeasurement, "缺少文本测量后端")
	}
	if w := m.Measure(SanityText); w == 0 {
		return errors.New(errors.ErrCodeFontMeasurement, "Font measurement failed - text width is 0")
	}
	return nil
}

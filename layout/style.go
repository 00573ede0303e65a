package layout

import (
	"math"
	"strings"

	"github.com/ByLCY/textoverlay/css"
	"github.com/ByLCY/textoverlay/errors"
)

// Position 文本块的垂直锚点。
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// Align 每一行以及背景面板的水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// FontColor 只允许白色或黑色。
type FontColor string

const (
	FontWhite FontColor = "white"
	FontBlack FontColor = "black"
)

// Hex returns the fill color used for glyphs.
func (c FontColor) Hex() string {
	if c == FontBlack {
		return "#000000"
	}
	return "#FFFFFF"
}

// Style 是一次渲染请求的全部样式参数，按值传递，创建后不再修改。
// 像素单位的字段（FontSize、Padding、StrokeWidth、Shadow*）均以设备像素计。
type Style struct {
	FontSize  float64   `json:"fontSize"`
	FontColor FontColor `json:"fontColor"`
	Position  Position  `json:"position"`
	TextAlign Align     `json:"textAlign"`
	Padding   float64   `json:"padding"`

	EnableBackground  bool    `json:"enableBackground"`
	BackgroundColor   string  `json:"backgroundColor"`
	BackgroundOpacity float64 `json:"backgroundOpacity"`

	EnableStroke bool    `json:"enableStroke"`
	StrokeColor  string  `json:"strokeColor"`
	StrokeWidth  float64 `json:"strokeWidth"`

	EnableShadow  bool    `json:"enableShadow"`
	ShadowColor   string  `json:"shadowColor"`
	ShadowBlur    float64 `json:"shadowBlur"`
	ShadowOffsetX float64 `json:"shadowOffsetX"`
	ShadowOffsetY float64 `json:"shadowOffsetY"`
}

// DefaultStyle returns the style used when a caller omits every field.
func DefaultStyle() Style {
	return Style{
		FontSize:          64,
		FontColor:         FontWhite,
		Position:          PositionBottom,
		TextAlign:         AlignCenter,
		Padding:           40,
		EnableBackground:  true,
		BackgroundColor:   "#000000",
		BackgroundOpacity: 0.6,
		EnableStroke:      true,
		StrokeColor:       "#000000",
		StrokeWidth:       3,
		EnableShadow:      true,
		ShadowColor:       "rgba(0, 0, 0, 0.8)",
		ShadowBlur:        8,
		ShadowOffsetX:     2,
		ShadowOffsetY:     2,
	}
}

// Validate 检查取值范围与颜色格式，失败时返回 VALIDATION 错误。
func (s Style) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"fontSize", s.FontSize},
		{"padding", s.Padding},
		{"backgroundOpacity", s.BackgroundOpacity},
		{"strokeWidth", s.StrokeWidth},
		{"shadowBlur", s.ShadowBlur},
		{"shadowOffsetX", s.ShadowOffsetX},
		{"shadowOffsetY", s.ShadowOffsetY},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeValidation, "%s 必须是有限数值，实际 %g", f.name, f.v)
		}
	}
	if s.FontSize <= 0 {
		return errors.New(errors.ErrCodeValidation, "fontSize 必须为正数，实际 %g", s.FontSize)
	}
	if s.Padding < 0 {
		return errors.New(errors.ErrCodeValidation, "padding 不能为负数，实际 %g", s.Padding)
	}
	if _, err := ParseFontColor(string(s.FontColor)); err != nil {
		return err
	}
	if _, err := ParsePosition(string(s.Position)); err != nil {
		return err
	}
	if _, err := ParseAlign(string(s.TextAlign)); err != nil {
		return err
	}
	if s.EnableBackground {
		if s.BackgroundOpacity < 0 || s.BackgroundOpacity > 1 {
			return errors.New(errors.ErrCodeValidation, "backgroundOpacity 必须在 0 到 1 之间，实际 %g", s.BackgroundOpacity)
		}
		if _, err := css.ParseColor(s.BackgroundColor); err != nil {
			return errors.Wrap(errors.ErrCodeValidation, err, "backgroundColor 非法")
		}
	}
	if s.EnableStroke {
		if s.StrokeWidth <= 0 {
			return errors.New(errors.ErrCodeValidation, "strokeWidth 必须为正数，实际 %g", s.StrokeWidth)
		}
		if _, err := css.ParseColor(s.StrokeColor); err != nil {
			return errors.Wrap(errors.ErrCodeValidation, err, "strokeColor 非法")
		}
	}
	if s.EnableShadow {
		if s.ShadowBlur < 0 {
			return errors.New(errors.ErrCodeValidation, "shadowBlur 不能为负数，实际 %g", s.ShadowBlur)
		}
		if _, err := css.ParseColor(s.ShadowColor); err != nil {
			return errors.Wrap(errors.ErrCodeValidation, err, "shadowColor 非法")
		}
	}
	return nil
}

// ParsePosition 大小写不敏感；未知取值返回 VALIDATION 错误。
func ParsePosition(v string) (Position, error) {
	switch Position(strings.ToLower(strings.TrimSpace(v))) {
	case PositionTop:
		return PositionTop, nil
	case PositionCenter:
		return PositionCenter, nil
	case PositionBottom:
		return PositionBottom, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "未知的 position %q（可选 top/center/bottom）", v)
}

// ParseAlign 大小写不敏感；未知取值返回 VALIDATION 错误。
func ParseAlign(v string) (Align, error) {
	switch Align(strings.ToLower(strings.TrimSpace(v))) {
	case AlignLeft:
		return AlignLeft, nil
	case AlignCenter:
		return AlignCenter, nil
	case AlignRight:
		return AlignRight, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "未知的 textAlign %q（可选 left/center/right）", v)
}

// ParseFontColor 大小写不敏感；未知取值返回 VALIDATION 错误。
func ParseFontColor(v string) (FontColor, error) {
	switch FontColor(strings.ToLower(strings.TrimSpace(v))) {
	case FontWhite:
		return FontWhite, nil
	case FontBlack:
		return FontBlack, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "未知的 fontColor %q（可选 white/black）", v)
}

// StyleOverrides 描述调用方显式给出的样式字段，nil 表示沿用默认值。
// JSON 字段名与 HTTP 请求体保持一致，TOML 字段名用于配置文件。
type StyleOverrides struct {
	FontSize          *float64 `json:"fontSize,omitempty" toml:"font_size"`
	FontColor         *string  `json:"fontColor,omitempty" toml:"font_color"`
	Position          *string  `json:"position,omitempty" toml:"position"`
	TextAlign         *string  `json:"textAlign,omitempty" toml:"text_align"`
	Padding           *float64 `json:"padding,omitempty" toml:"padding"`
	EnableBackground  *bool    `json:"enableBackground,omitempty" toml:"enable_background"`
	BackgroundColor   *string  `json:"backgroundColor,omitempty" toml:"background_color"`
	BackgroundOpacity *float64 `json:"backgroundOpacity,omitempty" toml:"background_opacity"`
	EnableStroke      *bool    `json:"enableStroke,omitempty" toml:"enable_stroke"`
	StrokeColor       *string  `json:"strokeColor,omitempty" toml:"stroke_color"`
	StrokeWidth       *float64 `json:"strokeWidth,omitempty" toml:"stroke_width"`
	EnableShadow      *bool    `json:"enableShadow,omitempty" toml:"enable_shadow"`
	ShadowColor       *string  `json:"shadowColor,omitempty" toml:"shadow_color"`
	ShadowBlur        *float64 `json:"shadowBlur,omitempty" toml:"shadow_blur"`
	ShadowOffsetX     *float64 `json:"shadowOffsetX,omitempty" toml:"shadow_offset_x"`
	ShadowOffsetY     *float64 `json:"shadowOffsetY,omitempty" toml:"shadow_offset_y"`
}

// Apply 将非 nil 字段覆盖到 base 上并返回新的 Style；枚举值会被规范化，非法枚举返回错误。
func (o StyleOverrides) Apply(base Style) (Style, error) {
	s := base
	if o.FontSize != nil {
		s.FontSize = *o.FontSize
	}
	if o.FontColor != nil {
		c, err := ParseFontColor(*o.FontColor)
		if err != nil {
			return Style{}, err
		}
		s.FontColor = c
	}
	if o.Position != nil {
		p, err := ParsePosition(*o.Position)
		if err != nil {
			return Style{}, err
		}
		s.Position = p
	}
	if o.TextAlign != nil {
		a, err := ParseAlign(*o.TextAlign)
		if err != nil {
			return Style{}, err
		}
		s.TextAlign = a
	}
	if o.Padding != nil {
		s.Padding = *o.Padding
	}
	if o.EnableBackground != nil {
		s.EnableBackground = *o.EnableBackground
	}
	if o.BackgroundColor != nil {
		s.BackgroundColor = *o.BackgroundColor
	}
	if o.BackgroundOpacity != nil {
		s.BackgroundOpacity = *o.BackgroundOpacity
	}
	if o.EnableStroke != nil {
		s.EnableStroke = *o.EnableStroke
	}
	if o.StrokeColor != nil {
		s.StrokeColor = *o.StrokeColor
	}
	if o.StrokeWidth != nil {
		s.StrokeWidth = *o.StrokeWidth
	}
	if o.EnableShadow != nil {
		s.EnableShadow = *o.EnableShadow
	}
	if o.ShadowColor != nil {
		s.ShadowColor = *o.ShadowColor
	}
	if o.ShadowBlur != nil {
		s.ShadowBlur = *o.ShadowBlur
	}
	if o.ShadowOffsetX != nil {
		s.ShadowOffsetX = *o.ShadowOffsetX
	}
	if o.ShadowOffsetY != nil {
		s.ShadowOffsetY = *o.ShadowOffsetY
	}
	return s, nil
}

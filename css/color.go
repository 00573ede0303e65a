package css

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
}

// ParseColor 解析 #rgb、#rgba、#rrggbb、#rrggbbaa、rgb()、rgba() 以及少量颜色关键字。
func ParseColor(s string) (color.NRGBA, error) {
	v, err := colorParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("解析颜色 %q 失败: %w", s, err)
	}
	switch {
	case v.Hex != nil:
		return parseHex(*v.Hex)
	case v.Func != nil:
		return parseFunc(v.Func)
	case v.Name != nil:
		if c, ok := namedColors[strings.ToLower(*v.Name)]; ok {
			return c, nil
		}
		return color.NRGBA{}, fmt.Errorf("未知颜色名 %q", *v.Name)
	}
	return color.NRGBA{}, fmt.Errorf("解析颜色 %q 失败", s)
}

// WithOpacity 返回乘以 opacity（0–1）后的颜色。
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}

func parseHex(hex string) (color.NRGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	switch len(h) {
	case 3, 4:
		// #rgb → #rrggbb
		var sb strings.Builder
		for _, r := range h {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		h = sb.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("非法十六进制颜色 %s", hex)
	}
	if len(h) == 6 {
		h += "ff"
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("非法十六进制颜色 %s: %w", hex, err)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseFunc(f *ColorFunc) (color.NRGBA, error) {
	name := strings.ToLower(f.Name)
	if name != "rgb" && name != "rgba" {
		return color.NRGBA{}, fmt.Errorf("不支持的颜色函数 %s()", f.Name)
	}
	if len(f.Args) != 3 && len(f.Args) != 4 {
		return color.NRGBA{}, fmt.Errorf("%s() 需要 3 或 4 个参数，实际 %d 个", f.Name, len(f.Args))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := parseChannel(f.Args[i])
		if err != nil {
			return color.NRGBA{}, err
		}
		ch[i] = v
	}
	alpha := uint8(255)
	if len(f.Args) == 4 {
		a, err := parseAlpha(f.Args[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha = a
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

func parseChannel(s string) (uint8, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("非法颜色分量 %s: %w", s, err)
		}
		return clampByte(f / 100 * 255), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("非法颜色分量 %s: %w", s, err)
	}
	return clampByte(f), nil
}

func parseAlpha(s string) (uint8, error) {
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 0.01
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("非法透明度 %s: %w", s, err)
	}
	return clampByte(f * scale * 255), nil
}

func clampByte(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

package layout

import "math"

const (
	// LineHeightFactor 行高 = 字号 × 1.3，不可配置。
	LineHeightFactor = 1.3
	// BackgroundPaddingPx 背景面板内边距，仅在启用背景时生效。
	BackgroundPaddingPx = 20.0
	// PanelRadius 背景面板圆角半径。
	PanelRadius = 10.0
)

// BackgroundPadding 返回面板内边距：启用背景时为 20，否则为 0。
func BackgroundPadding(s Style) float64 {
	if s.EnableBackground {
		return BackgroundPaddingPx
	}
	return 0
}

// MaxTextWidth 是折行使用的最大行宽。它在折行之前就依赖是否启用背景，
// 随后背景宽度又由折行结果决定，计算顺序必须保持不变。
func MaxTextWidth(imageWidth int, s Style) float64 {
	return float64(imageWidth) - s.Padding*2 - BackgroundPadding(s)*2
}

// Compute 根据已折好的行计算文本块位置、背景面板与每行的起点。
// 它是纯函数：相同输入总是得到相同的 Result。
func Compute(lines []string, m Measurer, imageWidth, imageHeight int, s Style) Result {
	width := float64(imageWidth)
	height := float64(imageHeight)

	lineHeight := s.FontSize * LineHeightFactor
	totalTextHeight := float64(len(lines)) * lineHeight

	widths := make([]float64, len(lines))
	maxLineWidth := 0.0
	for i, line := range lines {
		widths[i] = m.Measure(line)
		if widths[i] > maxLineWidth {
			maxLineWidth = widths[i]
		}
	}

	var top float64
	switch s.Position {
	case PositionTop:
		top = s.Padding
	case PositionCenter:
		// 文本高于图片时允许为负数
		top = (height - totalTextHeight) / 2
	default:
		top = math.Max(s.Padding, height-totalTextHeight-s.Padding)
	}

	bgPadding := BackgroundPadding(s)
	res := Result{
		ImageWidth:      imageWidth,
		ImageHeight:     imageHeight,
		TextBlockTop:    top,
		LineHeight:      lineHeight,
		TotalTextHeight: totalTextHeight,
		MaxLineWidth:    maxLineWidth,
		BgPadding:       bgPadding,
		Lines:           make([]PlacedLine, len(lines)),
	}

	// 没有任何行（空白文本）时不画面板
	if s.EnableBackground && len(lines) > 0 {
		res.Background = backgroundBox(width, height, top, totalTextHeight, maxLineWidth, bgPadding, s)
	}

	for i, line := range lines {
		res.Lines[i] = PlacedLine{
			Text:  line,
			X:     lineX(widths[i], width, res.Background, bgPadding, s),
			Y:     top + float64(i)*lineHeight,
			Width: widths[i],
		}
	}
	return res
}

func backgroundBox(width, height, top, totalTextHeight, maxLineWidth, bgPadding float64, s Style) *Box {
	bgWidth := math.Min(width-s.Padding*2, maxLineWidth+bgPadding*2)

	var bgX float64
	switch s.TextAlign {
	case AlignLeft:
		bgX = s.Padding
	case AlignRight:
		bgX = width - bgWidth - s.Padding
	default:
		bgX = (width - bgWidth) / 2
	}
	bgX = math.Max(0, math.Min(bgX, width-bgWidth))

	bgHeight := totalTextHeight + bgPadding*2
	bgY := math.Max(0, top-bgPadding)
	// 面板超出底边时上移；面板比图片还高时 Y 仍可能为负
	bgY = math.Min(bgY, height-bgHeight)

	return &Box{X: bgX, Y: bgY, Width: bgWidth, Height: bgHeight}
}

func lineX(lw, width float64, bg *Box, bgPadding float64, s Style) float64 {
	if bg != nil {
		switch s.TextAlign {
		case AlignLeft:
			return bg.X + bgPadding
		case AlignRight:
			return bg.X + bg.Width - lw - bgPadding
		default:
			return bg.X + (bg.Width-lw)/2
		}
	}
	switch s.TextAlign {
	case AlignLeft:
		return s.Padding
	case AlignRight:
		return width - lw - s.Padding
	default:
		return (width - lw) / 2
	}
}

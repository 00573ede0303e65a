package layout

// 该文件定义布局结果，供渲染器与调试 JSON 共用。所有坐标均为设备像素，原点在左上角。

// Result 保存一次布局计算的全部输出，是只读的纯数据。
type Result struct {
	ImageWidth      int          `json:"imageWidth"`
	ImageHeight     int          `json:"imageHeight"`
	TextBlockTop    float64      `json:"textBlockTop"`
	LineHeight      float64      `json:"lineHeight"`
	TotalTextHeight float64      `json:"totalTextHeight"`
	MaxLineWidth    float64      `json:"maxLineWidth"`
	BgPadding       float64      `json:"bgPadding"`
	Background      *Box         `json:"background,omitempty"`
	Lines           []PlacedLine `json:"lines"`
}

// Box 表示背景面板的矩形区域。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the box has no drawable area.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// PlacedLine 表示一行已经确定位置的文本；Y 为字形框顶部而不是基线。
type PlacedLine struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Texts returns the wrapped line contents in order.
func (r *Result) Texts() []string {
	out := make([]string, len(r.Lines))
	for i, ln := range r.Lines {
		out[i] = ln.Text
	}
	return out
}

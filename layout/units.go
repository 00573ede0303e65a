package layout

// 渲染后端以 1 像素 = 1 毫米的分辨率光栅化画布，
// 因此像素值可以直接作为画布坐标（mm）使用，字号则需要换算为 pt。

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToPt converts a pixel font size into the point size expected by font faces.
func PxToPt(px float64) float64 { return px * MmToPt }

// PtToPx converts a point size back to pixels.
func PtToPx(pt float64) float64 { return pt * PtToMm }

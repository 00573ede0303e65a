package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/textoverlay/layout"
)

// paint 在 dst 上创建与其同尺寸的画布，执行 draw 后直接光栅化进 dst（Over 混合）。
// 画布坐标系 y 轴向上，1 单位 = 1 像素；调用方用 flipY 换算图像坐标。
func paint(dst *image.RGBA, draw func(ctx *canvas.Context, height float64)) {
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	draw(ctx, h)
	ras := rasterizer.FromImage(dst, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	c.RenderTo(ras)
	ras.Close()
}

// flipY 将左上角原点的图像 y 坐标转换为画布坐标。
func flipY(height, y float64) float64 { return height - y }

// DrawPanel 在 box 处绘制圆角矩形背景。圆角半径固定为 10，面板过小时收缩为 min(10, w/2, h/2)。
func DrawPanel(dst *image.RGBA, box layout.Box, fill color.NRGBA) {
	if box.Empty() || fill.A == 0 {
		return
	}
	radius := math.Min(layout.PanelRadius, math.Min(box.Width/2, box.Height/2))
	paint(dst, func(ctx *canvas.Context, height float64) {
		ctx.SetFillColor(fill)
		ctx.SetStrokeColor(canvas.Transparent)
		// 圆角矩形路径从左下角向上生长
		ctx.DrawPath(box.X, flipY(height, box.Y+box.Height), canvas.RoundedRectangle(box.Width, box.Height, radius))
	})
}

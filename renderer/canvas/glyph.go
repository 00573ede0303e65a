package canvasrenderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/textoverlay/layout"
)

// StrokeParams describes the glyph outline.
type StrokeParams struct {
	Color color.NRGBA
	Width float64
}

// ShadowParams 对应 canvas 2D 的 shadowColor/shadowBlur/shadowOffsetX/shadowOffsetY。
type ShadowParams struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// LineParams 是绘制一行所需的全部参数。每次调用显式传入，不存在跨行残留的绘图状态。
type LineParams struct {
	Faces  *FaceStack
	Fill   color.NRGBA
	Stroke *StrokeParams // nil 表示不描边
	Shadow *ShadowParams // nil 表示无阴影
}

// DrawLine 在 dst 上绘制一行文本：先阴影（同时作用于描边、填充与 emoji），再描边，
// 然后填充，使填充覆盖在描边之上；彩色 emoji 位图最后按原色贴上。line.Y 是字形框顶部。
func DrawLine(dst *image.RGBA, line layout.PlacedLine, p LineParams) {
	if line.Text == "" || p.Faces == nil {
		return
	}
	outline := p.Faces.Outline(line.Text)
	baseline := line.Y + p.Faces.Ascent()
	bitmaps := scaleBitmaps(p.Faces.Bitmaps(line.Text), line.X, baseline)
	if outline.Empty() && len(bitmaps) == 0 {
		return
	}

	if p.Shadow != nil && p.Shadow.Color.A > 0 {
		drawShadow(dst, outline, bitmaps, line.X, baseline, p)
	}
	if !outline.Empty() {
		paint(dst, func(ctx *canvas.Context, height float64) {
			if p.Stroke != nil {
				strokeOutline(ctx, outline, line.X, flipY(height, baseline), p.Stroke.Color, p.Stroke.Width)
			}
			fillOutline(ctx, outline, line.X, flipY(height, baseline), p.Fill)
		})
	}
	for _, b := range bitmaps {
		draw.Draw(dst, b.rect, b.img, image.Point{}, draw.Over)
	}
}

// scaledBitmap 是缩放到目标像素尺寸的位图字形及其在图像中的矩形。
type scaledBitmap struct {
	img  *image.NRGBA
	rect image.Rectangle
}

func scaleBitmaps(placed []PlacedBitmap, x, baseline float64) []scaledBitmap {
	out := make([]scaledBitmap, 0, len(placed))
	for _, pb := range placed {
		g := pb.Glyph
		w, h := int(math.Round(g.Width)), int(math.Round(g.Height))
		if w < 1 || h < 1 {
			continue
		}
		at := image.Pt(int(math.Round(x+pb.X)), int(math.Round(baseline+g.Y)))
		out = append(out, scaledBitmap{
			img:  imaging.Resize(g.Image, w, h, imaging.Lanczos),
			rect: image.Rectangle{Min: at, Max: at.Add(image.Pt(w, h))},
		})
	}
	return out
}

// drawShadow 把本行的描边、填充轮廓与 emoji 剪影以阴影色绘制到临时图层并偏移，
// 按 canvas 2D 的约定以 σ = blur/2 做高斯模糊，再合成到 dst。
func drawShadow(dst *image.RGBA, outline *canvas.Path, bitmaps []scaledBitmap, x, baseline float64, p LineParams) {
	s := p.Shadow
	layer := image.NewRGBA(dst.Bounds())
	if !outline.Empty() {
		paint(layer, func(ctx *canvas.Context, height float64) {
			sx, sy := x+s.OffsetX, flipY(height, baseline+s.OffsetY)
			if p.Stroke != nil {
				strokeOutline(ctx, outline, sx, sy, s.Color, p.Stroke.Width)
			}
			fillOutline(ctx, outline, sx, sy, s.Color)
		})
	}
	offset := image.Pt(int(math.Round(s.OffsetX)), int(math.Round(s.OffsetY)))
	for _, b := range bitmaps {
		draw.DrawMask(layer, b.rect.Add(offset), image.NewUniform(s.Color), image.Point{}, b.img, image.Point{}, draw.Over)
	}

	var shadow image.Image = layer
	if sigma := s.Blur / 2; sigma > 0 {
		shadow = imaging.Blur(layer, sigma)
	}
	draw.Draw(dst, dst.Bounds(), shadow, shadow.Bounds().Min, draw.Over)
}

func strokeOutline(ctx *canvas.Context, outline *canvas.Path, x, y float64, col color.NRGBA, width float64) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(width)
	ctx.DrawPath(x, y, outline)
}

func fillOutline(ctx *canvas.Context, outline *canvas.Path, x, y float64, col color.NRGBA) {
	ctx.SetFillColor(col)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(x, y, outline)
}

package canvasrenderer

import (
	"image/color"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/textoverlay/css"
	"github.com/ByLCY/textoverlay/errors"
	"github.com/ByLCY/textoverlay/fonts"
	"github.com/ByLCY/textoverlay/layout"
)

// FaceStack 是按字体栈顺序排列的一组字体面，实现 layout.Measurer。
// 每个字符使用栈中第一个包含该字形的字体面；都不包含时回退到第一个轮廓字体面。
type FaceStack struct {
	Stack  string
	SizePx float64

	faces   []stackFace
	primary int // 第一个轮廓字体面的下标，提供行度量与缺字回退
}

var _ layout.Measurer = (*FaceStack)(nil)

// stackFace 是轮廓字体面或彩色位图字体，二者取其一。
type stackFace struct {
	outline *canvas.FontFace
	bitmap  fonts.BitmapFace
}

func (f stackFace) has(r rune) bool {
	if f.bitmap != nil {
		return f.bitmap.HasGlyph(r)
	}
	return f.outline.Font.GlyphIndex(r) != 0
}

type run struct {
	face stackFace
	text string
}

// PlacedBitmap 是一行中的一个位图字形，X 相对行起点，Y 相对基线（y 轴向下）。
type PlacedBitmap struct {
	Glyph fonts.BitmapGlyph
	X     float64
}

// NewFaceStack 解析字体栈字符串并为每个已注册的家族创建 sizePx 大小的字体面。
// 栈中未注册的家族会被跳过；没有任何轮廓字体时返回 FONT_MEASUREMENT 错误。
func NewFaceStack(reg *fonts.Registry, stack string, sizePx float64) (*FaceStack, error) {
	families, err := css.ParseFontStack(stack)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontMeasurement, err, "字体栈不可用")
	}
	fs := &FaceStack{Stack: stack, SizePx: sizePx, primary: -1}
	for _, name := range families {
		if bf, ok := reg.Bitmap(name); ok {
			fs.faces = append(fs.faces, stackFace{bitmap: bf})
			continue
		}
		family, ok := reg.Family(name)
		if !ok {
			continue
		}
		if fs.primary < 0 {
			fs.primary = len(fs.faces)
		}
		// 画布以 1px = 1mm 光栅化，字号需换算为 pt。
		face := family.Face(layout.PxToPt(sizePx), color.Black, canvas.FontBold, canvas.FontNormal)
		fs.faces = append(fs.faces, stackFace{outline: face})
	}
	if fs.primary < 0 {
		return nil, errors.New(errors.ErrCodeFontMeasurement, "字体栈 %s 中没有可用字体", stack)
	}
	return fs, nil
}

// Measure 返回 text 的渲染宽度（设备像素）。
func (fs *FaceStack) Measure(text string) float64 {
	w := 0.0
	for _, r := range fs.runs(text) {
		w += fs.runWidth(r)
	}
	return w
}

// Ascent 返回主字体面的上升部高度，用于把行顶部换算为基线。
func (fs *FaceStack) Ascent() float64 {
	return fs.faces[fs.primary].outline.Metrics().Ascent
}

// Outline 返回整行文本的字形轮廓，原点位于基线起点，y 轴向上。
// 位图字形不在轮廓中，只占位；由 Bitmaps 给出它们的位置。
func (fs *FaceStack) Outline(text string) *canvas.Path {
	outline := &canvas.Path{}
	x := 0.0
	for _, r := range fs.runs(text) {
		if r.face.outline != nil {
			if p, _, err := r.face.outline.ToPath(r.text); err == nil && p != nil {
				outline = outline.Append(p.Translate(x, 0))
			}
		}
		x += fs.runWidth(r)
	}
	return outline
}

// Bitmaps 返回整行中位图字形（彩色 emoji）的位置，推进方式与 Measure 一致。
func (fs *FaceStack) Bitmaps(text string) []PlacedBitmap {
	var out []PlacedBitmap
	x := 0.0
	for _, r := range fs.runs(text) {
		if r.face.bitmap == nil {
			x += fs.runWidth(r)
			continue
		}
		for _, ch := range r.text {
			if g, ok := r.face.bitmap.Glyph(ch, fs.SizePx); ok {
				out = append(out, PlacedBitmap{Glyph: g, X: x + g.X})
			}
			x += r.face.bitmap.Advance(ch, fs.SizePx)
		}
	}
	return out
}

func (fs *FaceStack) runWidth(r run) float64 {
	if r.face.outline != nil {
		return r.face.outline.TextWidth(r.text)
	}
	w := 0.0
	for _, ch := range r.text {
		w += r.face.bitmap.Advance(ch, fs.SizePx)
	}
	return w
}

func (fs *FaceStack) runs(text string) []run {
	var out []run
	var sb strings.Builder
	cur := -1
	for _, r := range text {
		idx := cur
		// 空白沿用当前轮廓字体面，避免把单词之间的空格切成独立片段
		if idx < 0 || !unicode.IsSpace(r) || fs.faces[idx].bitmap != nil {
			idx = fs.faceFor(r)
		}
		if idx != cur && sb.Len() > 0 {
			out = append(out, run{face: fs.faces[cur], text: sb.String()})
			sb.Reset()
		}
		cur = idx
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		out = append(out, run{face: fs.faces[cur], text: sb.String()})
	}
	return out
}

func (fs *FaceStack) faceFor(r rune) int {
	for i, face := range fs.faces {
		// 空白只交给轮廓字体面
		if face.bitmap != nil && unicode.IsSpace(r) {
			continue
		}
		if face.has(r) {
			return i
		}
	}
	return fs.primary
}

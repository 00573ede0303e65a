package fonts

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
)

// BitmapFace 提供彩色位图字形（CBDT / sbix），例如 Noto Color Emoji。
// 这类字体没有 glyf 轮廓，canvas 无法载入，只能按位图贴图绘制。
type BitmapFace interface {
	HasGlyph(r rune) bool
	// Advance 返回 sizePx 字号下 r 的步进宽度（像素）。
	Advance(r rune, sizePx float64) float64
	// Glyph 返回 r 的位图及其在 sizePx 字号下的放置位置。
	Glyph(r rune, sizePx float64) (BitmapGlyph, bool)
}

// BitmapGlyph 是缩放前的位图与缩放后的目标矩形。
// X、Y 是矩形左上角相对笔位与基线的偏移，y 轴向下（Y 通常为负）。
type BitmapGlyph struct {
	Image  image.Image
	X, Y   float64
	Width  float64
	Height float64
}

// BitmapFont 基于 go-text/typesetting 解析的彩色位图字体，可并发使用。
type BitmapFont struct {
	mu      sync.Mutex
	face    *font.Face
	upem    float64
	decoded map[rune]image.Image // nil 值表示该字形没有可解码的位图
}

var _ BitmapFace = (*BitmapFont)(nil)

// ParseBitmapFont 解析带 CBDT 或 sbix 表的字体；没有位图表的字体返回错误。
func ParseBitmapFont(data []byte) (*BitmapFont, error) {
	ld, err := opentype.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	if !ld.HasTable(opentype.MustNewTag("CBDT")) && !ld.HasTable(opentype.MustNewTag("sbix")) {
		return nil, fmt.Errorf("字体不含 CBDT 或 sbix 位图表")
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析位图字体失败: %w", err)
	}
	upem := float64(face.Upem())
	if upem <= 0 {
		return nil, fmt.Errorf("位图字体 unitsPerEm 无效")
	}
	return &BitmapFont{face: face, upem: upem, decoded: map[rune]image.Image{}}, nil
}

// HasGlyph reports whether the cmap maps r.
func (f *BitmapFont) HasGlyph(r rune) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.face.NominalGlyph(r)
	return ok
}

func (f *BitmapFont) Advance(r rune, sizePx float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return 0
	}
	return float64(f.face.HorizontalAdvance(gid)) * sizePx / f.upem
}

// Glyph 解码（并缓存）r 的位图。优先使用字形度量确定矩形；
// 没有度量时按步进宽度等比缩放，底边落在基线下 0.2em。
func (f *BitmapFont) Glyph(r rune, sizePx float64) (BitmapGlyph, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return BitmapGlyph{}, false
	}
	img, cached := f.decoded[r]
	if !cached {
		if data, ok := f.face.GlyphData(gid).(font.GlyphBitmap); ok {
			if decoded, err := imaging.Decode(bytes.NewReader(data.Data)); err == nil {
				img = decoded
			}
		}
		f.decoded[r] = img
	}
	if img == nil || img.Bounds().Empty() {
		return BitmapGlyph{}, false
	}

	scale := sizePx / f.upem
	g := BitmapGlyph{Image: img}
	if ext, ok := f.face.GlyphExtents(gid); ok && ext.Width != 0 && ext.Height != 0 {
		g.X = float64(ext.XBearing) * scale
		g.Y = -float64(ext.YBearing) * scale
		g.Width = math.Abs(float64(ext.Width)) * scale
		g.Height = math.Abs(float64(ext.Height)) * scale
		return g, true
	}
	b := img.Bounds()
	g.Width = float64(f.face.HorizontalAdvance(gid)) * scale
	g.Height = g.Width * float64(b.Dy()) / float64(b.Dx())
	g.Y = 0.2*sizePx - g.Height
	return g, true
}

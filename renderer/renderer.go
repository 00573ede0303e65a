package renderer

import (
	"context"
	"image"

	"github.com/ByLCY/textoverlay/layout"
)

// Renderer 把多行文本叠加到底图上，返回与底图同尺寸的新图像。
// 底图不会被修改；相同输入总是产生相同像素。
type Renderer interface {
	RenderOverlay(ctx context.Context, base image.Image, text string, s layout.Style) (*image.NRGBA, error)
}

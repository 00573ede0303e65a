package canvasrenderer

import (
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/textoverlay/errors"
)

// Composite 将 overlay 以 alpha-over 方式合成到 base 的 (0,0) 处，返回新图像，base 不会被修改。
func Composite(base, overlay image.Image) *image.NRGBA {
	return imaging.Overlay(base, overlay, image.Pt(0, 0), 1.0)
}

// Format 输出图片格式。
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat 接受 png / jpg / jpeg（大小写不敏感），空字符串视为 png。
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "不支持的输出格式 %q", v)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode 按 format 编码图片；JPEG 质量固定为 90。
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}

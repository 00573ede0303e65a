package canvasrenderer

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/textoverlay/css"
	"github.com/ByLCY/textoverlay/errors"
	"github.com/ByLCY/textoverlay/fonts"
	"github.com/ByLCY/textoverlay/layout"
	"github.com/ByLCY/textoverlay/observability"
	"github.com/ByLCY/textoverlay/renderer"
)

// Renderer draws text overlays via github.com/tdewolff/canvas.
// 唯一的共享状态是注入的字体注册表，因此多个渲染可以并发进行。
type Renderer struct {
	registry *fonts.Registry
	logger   *log.Logger

	// 测试注入：替换字体栈的测量结果
	measureOverride layout.Measurer
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Registry *fonts.Registry // nil 时只使用内置 sans-serif
	Logger   *log.Logger     // nil 时不输出日志
}

// Plan 是一次渲染的中间结果：选定的字体栈、测量器与布局。
type Plan struct {
	Stack  string
	Faces  *FaceStack
	Layout layout.Result
}

// NewRenderer creates a renderer bound to the given font registry.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{registry: opts.Registry, logger: opts.Logger}
	if r.registry == nil {
		r.registry = fonts.NewRegistry()
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Plan 完成绘制之前的全部步骤：校验、字体栈选择、测量自检、折行与布局。
func (r *Renderer) Plan(ctx context.Context, width, height int, text string, s layout.Style) (*Plan, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeValidation, "text 不能为空")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "图片尺寸无效: %dx%d", width, height)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	stack := fonts.Resolve(r.registry.Families())
	if fonts.Degraded(stack) {
		r.logger.Warn("未找到 Roboto 或 DejaVu Sans，使用内置字体", "stack", stack)
		observability.Fonts().OnFallback(ctx, stack)
	}
	r.logger.Debug("字体栈", "stack", stack, "size", s.FontSize)

	faces, err := NewFaceStack(r.registry, stack, s.FontSize)
	if err != nil {
		return nil, err
	}
	var m layout.Measurer = faces
	if r.measureOverride != nil {
		m = r.measureOverride
	}
	if err := layout.CheckMeasurer(m); err != nil {
		return nil, err
	}

	maxWidth := layout.MaxTextWidth(width, s)
	lines := layout.Wrap(text, m, maxWidth)
	res := layout.Compute(lines, m, width, height, s)
	r.logger.Debug("折行完成", "lines", len(lines), "maxWidth", maxWidth, "top", res.TextBlockTop)

	return &Plan{Stack: stack, Faces: faces, Layout: res}, nil
}

// RenderOverlay 在底图上绘制背景面板与文本，返回合成后的新图像。
// ctx 只用于观测钩子；渲染本身是同步的纯计算。
func (r *Renderer) RenderOverlay(ctx context.Context, base image.Image, text string, s layout.Style) (out *image.NRGBA, err error) {
	if base == nil {
		return nil, errors.New(errors.ErrCodeValidation, "缺少底图")
	}
	b := base.Bounds()
	start := time.Now()
	lines := 0
	observability.Render().OnRenderStart(ctx, b.Dx(), b.Dy())
	defer func() {
		observability.Render().OnRenderComplete(ctx, lines, time.Since(start), err)
	}()

	plan, err := r.Plan(ctx, b.Dx(), b.Dy(), text, s)
	if err != nil {
		return nil, err
	}
	lines = len(plan.Layout.Lines)

	overlay := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if err := drawOverlay(overlay, plan, s); err != nil {
		return nil, err
	}
	return Composite(base, overlay), nil
}

// drawOverlay 先画面板，再逐行绘制文字。颜色已在 Style.Validate 中校验过。
func drawOverlay(dst *image.RGBA, plan *Plan, s layout.Style) error {
	if bg := plan.Layout.Background; bg != nil {
		c, err := css.ParseColor(s.BackgroundColor)
		if err != nil {
			return errors.Wrap(errors.ErrCodeValidation, err, "backgroundColor 非法")
		}
		DrawPanel(dst, *bg, css.WithOpacity(c, s.BackgroundOpacity))
	}

	params, err := lineParams(plan.Faces, s)
	if err != nil {
		return err
	}
	for _, line := range plan.Layout.Lines {
		DrawLine(dst, line, params)
	}
	return nil
}

func lineParams(faces *FaceStack, s layout.Style) (LineParams, error) {
	fill, err := css.ParseColor(s.FontColor.Hex())
	if err != nil {
		return LineParams{}, errors.Wrap(errors.ErrCodeValidation, err, "fontColor 非法")
	}
	p := LineParams{Faces: faces, Fill: fill}
	if s.EnableStroke {
		c, err := css.ParseColor(s.StrokeColor)
		if err != nil {
			return LineParams{}, errors.Wrap(errors.ErrCodeValidation, err, "strokeColor 非法")
		}
		p.Stroke = &StrokeParams{Color: c, Width: s.StrokeWidth}
	}
	if s.EnableShadow {
		c, err := css.ParseColor(s.ShadowColor)
		if err != nil {
			return LineParams{}, errors.Wrap(errors.ErrCodeValidation, err, "shadowColor 非法")
		}
		p.Shadow = &ShadowParams{Color: c, Blur: s.ShadowBlur, OffsetX: s.ShadowOffsetX, OffsetY: s.ShadowOffsetY}
	}
	return p, nil
}

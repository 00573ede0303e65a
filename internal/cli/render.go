package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/textoverlay/binding"
	"github.com/ByLCY/textoverlay/config"
	"github.com/ByLCY/textoverlay/layout"
	canvasrenderer "github.com/ByLCY/textoverlay/renderer/canvas"
	"github.com/ByLCY/textoverlay/source"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	image     string // 图片地址：本地路径、file://、http(s):// 或 data:
	text      string
	data      string // 用于 ${path} 占位符的 JSON
	output    string
	format    string // 为空时按输出文件扩展名推断
	styleFile string // TOML 样式文件
	debug     string // 布局调试 JSON 输出路径，"-" 表示标准输出
	fonts     string
	system    bool // 同时查找系统字体
	stdout    io.Writer
}

// styleFlags 只有显式给出的参数才会覆盖样式。
type styleFlags struct {
	fontSize          float64
	fontColor         string
	position          string
	align             string
	padding           float64
	noBackground      bool
	backgroundColor   string
	backgroundOpacity float64
	noStroke          bool
	strokeColor       string
	strokeWidth       float64
	noShadow          bool
	shadowColor       string
	shadowBlur        float64
	shadowOffsetX     float64
	shadowOffsetY     float64
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts
	var sf styleFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw text onto a single image",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := collectStyle(opts.styleFile, cmd.Flags(), sf)
			if err != nil {
				return err
			}
			opts.stdout = cmd.OutOrStdout()
			return runRender(cmd.Context(), opts, overrides)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.image, "image", "i", "", "source image (path, file://, http(s):// or data: URI)")
	f.StringVarP(&opts.text, "text", "t", "", "text to draw; supports ${path} placeholders with --data")
	f.StringVar(&opts.data, "data", "", "JSON object for ${path} placeholders")
	f.StringVarP(&opts.output, "out", "o", "output.png", "output file")
	f.StringVarP(&opts.format, "format", "f", "", "output format: png, jpeg (default: from --out extension)")
	f.StringVar(&opts.styleFile, "style", "", "TOML style file")
	f.StringVar(&opts.debug, "debug", "", "write the computed layout as JSON to this path (- for stdout)")
	f.StringVar(&opts.fonts, "fonts", "fonts", "font directory")
	f.BoolVar(&opts.system, "system-fonts", true, "also search system font directories")

	f.Float64Var(&sf.fontSize, "font-size", 64, "font size in pixels")
	f.StringVar(&sf.fontColor, "font-color", "white", "font color: white, black")
	f.StringVar(&sf.position, "position", "bottom", "vertical position: top, center, bottom")
	f.StringVar(&sf.align, "align", "center", "text alignment: left, center, right")
	f.Float64Var(&sf.padding, "padding", 40, "padding from the image edges in pixels")
	f.BoolVar(&sf.noBackground, "no-background", false, "disable the background panel")
	f.StringVar(&sf.backgroundColor, "background-color", "#000000", "background panel color")
	f.Float64Var(&sf.backgroundOpacity, "background-opacity", 0.6, "background panel opacity (0-1)")
	f.BoolVar(&sf.noStroke, "no-stroke", false, "disable the glyph outline")
	f.StringVar(&sf.strokeColor, "stroke-color", "#000000", "outline color")
	f.Float64Var(&sf.strokeWidth, "stroke-width", 3, "outline width in pixels")
	f.BoolVar(&sf.noShadow, "no-shadow", false, "disable the drop shadow")
	f.StringVar(&sf.shadowColor, "shadow-color", "rgba(0, 0, 0, 0.8)", "shadow color")
	f.Float64Var(&sf.shadowBlur, "shadow-blur", 8, "shadow blur in pixels")
	f.Float64Var(&sf.shadowOffsetX, "shadow-offset-x", 2, "horizontal shadow offset in pixels")
	f.Float64Var(&sf.shadowOffsetY, "shadow-offset-y", 2, "vertical shadow offset in pixels")

	cmd.MarkFlagRequired("image")
	cmd.MarkFlagRequired("text")
	return cmd
}

// collectStyle 合并样式文件与命令行参数，参数优先。
func collectStyle(path string, flags *pflag.FlagSet, sf styleFlags) (layout.StyleOverrides, error) {
	var o layout.StyleOverrides
	if path != "" {
		var err error
		if o, err = config.LoadStyle(path); err != nil {
			return o, err
		}
	}
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	off := false
	set("font-size", func() { o.FontSize = &sf.fontSize })
	set("font-color", func() { o.FontColor = &sf.fontColor })
	set("position", func() { o.Position = &sf.position })
	set("align", func() { o.TextAlign = &sf.align })
	set("padding", func() { o.Padding = &sf.padding })
	set("background-color", func() { o.BackgroundColor = &sf.backgroundColor })
	set("background-opacity", func() { o.BackgroundOpacity = &sf.backgroundOpacity })
	set("stroke-color", func() { o.StrokeColor = &sf.strokeColor })
	set("stroke-width", func() { o.StrokeWidth = &sf.strokeWidth })
	set("shadow-color", func() { o.ShadowColor = &sf.shadowColor })
	set("shadow-blur", func() { o.ShadowBlur = &sf.shadowBlur })
	set("shadow-offset-x", func() { o.ShadowOffsetX = &sf.shadowOffsetX })
	set("shadow-offset-y", func() { o.ShadowOffsetY = &sf.shadowOffsetY })
	if sf.noBackground {
		o.EnableBackground = &off
	}
	if sf.noStroke {
		o.EnableStroke = &off
	}
	if sf.noShadow {
		o.EnableShadow = &off
	}
	return o, nil
}

func runRender(ctx context.Context, opts renderOpts, overrides layout.StyleOverrides) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	style, err := overrides.Apply(layout.DefaultStyle())
	if err != nil {
		return err
	}
	text := opts.text
	if opts.data != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("解析 --data JSON 失败: %w", err)
		}
		var missing []string
		if text, missing = binding.Caption(text, data); len(missing) > 0 {
			logger.Warn("占位符未解析", "paths", missing)
		}
	}
	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	reg := loadRegistry(ctx, opts.fonts, opts.system, logger)
	loader := source.NewLoader(source.Options{AllowFiles: true, Logger: logger})
	base, err := loader.Load(ctx, opts.image)
	if err != nil {
		return err
	}

	r := canvasrenderer.NewRenderer(canvasrenderer.Options{Registry: reg, Logger: logger})
	if opts.debug != "" {
		b := base.Bounds()
		plan, err := r.Plan(ctx, b.Dx(), b.Dy(), text, style)
		if err != nil {
			return err
		}
		if err := writeDebug(opts, &plan.Layout); err != nil {
			return fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
	}
	out, err := r.RenderOverlay(ctx, base, text, style)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := canvasrenderer.Encode(f, out, format); err != nil {
		f.Close()
		return fmt.Errorf("编码图片失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	prog.done("已生成图片", "out", opts.output)
	return nil
}

// outputFormat 优先使用 --format，否则根据扩展名判断。
func outputFormat(format, output string) (canvasrenderer.Format, error) {
	if format != "" {
		return canvasrenderer.ParseFormat(format)
	}
	return canvasrenderer.ParseFormat(strings.TrimPrefix(filepath.Ext(output), "."))
}

func writeDebug(opts renderOpts, res *layout.Result) error {
	if opts.debug == "-" {
		return layout.WriteDebugJSON(opts.stdout, res)
	}
	f, err := os.Create(opts.debug)
	if err != nil {
		return err
	}
	if err := layout.WriteDebugJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Package cli 实现 textoverlay 命令行：serve 启动 HTTP 服务，render 处理单张图片，fonts 查看字体。
//
// 所有命令支持 --verbose (-v) 输出调试日志；日志器经 context.Context 传递给各命令。
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/textoverlay/fonts"
	"github.com/ByLCY/textoverlay/observability"
)

var version = "dev"

// SetVersion sets the string printed by --version.
func SetVersion(v string) { version = v }

// Execute runs the textoverlay CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "textoverlay",
		Short:        "Draw captions onto images",
		Long:         `textoverlay 在图片上绘制多行文字，支持半透明圆角背景、描边与阴影，可作为 HTTP 服务或命令行工具使用。`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("textoverlay %s\n", version))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newFontsCmd())
	return root
}

// loadRegistry 先注册字体目录中的已知字体，system 为 true 时再到系统字体目录补齐。
// 字体目录不存在或个别字体无法载入时只给出警告，最差情况下只剩内置 sans-serif。
func loadRegistry(ctx context.Context, dir string, system bool, logger *charmlog.Logger) *fonts.Registry {
	reg := fonts.NewRegistry()
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("字体目录不可用", "dir", dir, "err", err)
		} else {
			families, failed := reg.RegisterDir(dir)
			for _, f := range failed {
				logger.Warn("跳过无法载入的字体", "family", f.Family, "path", f.Path, "err", f.Err)
				observability.Fonts().OnLoadError(ctx, f.Family, f.Path, f.Err)
			}
			logger.Debug("已注册字体", "dir", dir, "families", families)
		}
	}
	if system {
		if families := reg.RegisterSystem(); len(families) > 0 {
			logger.Debug("已注册系统字体", "families", families)
		}
	}
	return reg
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/textoverlay/cache"
	"github.com/ByLCY/textoverlay/config"
	canvasrenderer "github.com/ByLCY/textoverlay/renderer/canvas"
	"github.com/ByLCY/textoverlay/server"
	"github.com/ByLCY/textoverlay/source"
)

type serveOpts struct {
	config string
	addr   string
	fonts  string
}

func newServeCmd() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the text overlay HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			// 命令行参数优先于配置文件与环境变量
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.fonts != "" {
				cfg.Fonts.Dir = opts.fonts
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "path to textoverlay.toml")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.fonts, "fonts", "", "font directory (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	reg := loadRegistry(ctx, cfg.Fonts.Dir, cfg.Fonts.System, logger)
	base, err := cfg.BaseStyle()
	if err != nil {
		return err
	}
	c, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(server.Options{
		APIKey:    cfg.Server.APIKey,
		BaseStyle: base,
		Registry:  reg,
		Loader: source.NewLoader(source.Options{
			Timeout:    cfg.Source.Timeout,
			MaxBytes:   cfg.Source.MaxBytes,
			Retries:    cfg.Source.Retries,
			AllowFiles: cfg.Source.AllowFiles,
			Logger:     logger,
		}),
		Renderer:     canvasrenderer.NewRenderer(canvasrenderer.Options{Registry: reg, Logger: logger}),
		Cache:        c,
		CacheBackend: cfg.Cache.Backend,
		CacheTTL:     cfg.Cache.TTL,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})
	if cfg.Server.APIKey == "" {
		logger.Warn("未配置 API 密钥，接口对所有人开放", "env", config.EnvAPIKey)
	}

	err = srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *charmlog.Logger) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Debug("使用内存缓存", "maxEntries", cfg.MaxEntries)
		return cache.NewMemoryCache(cfg.MaxEntries), nil
	case config.BackendRedis:
		logger.Debug("使用 redis 缓存", "addr", cfg.RedisAddr)
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NullCache{}, nil
	}
}

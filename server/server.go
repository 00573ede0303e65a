// Package server 提供叠字 HTTP 接口。
//
//	POST /api/text-overlay   JSON → PNG/JPEG
//	GET  /api/fonts          已注册字体与当前字体栈
//	GET  /healthz
package server

import (
	"context"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/textoverlay/cache"
	"github.com/ByLCY/textoverlay/fonts"
	"github.com/ByLCY/textoverlay/layout"
	"github.com/ByLCY/textoverlay/renderer"
)

// ImageLoader resolves an image reference from a request.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Options configures the HTTP server.
type Options struct {
	// APIKey 非空时要求请求头 x-api-key 与之相等。
	APIKey    string
	BaseStyle layout.Style
	Loader    ImageLoader
	Renderer  renderer.Renderer
	Registry  *fonts.Registry

	Cache        cache.Cache
	CacheBackend string
	CacheTTL     time.Duration

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server handles overlay requests. Identical concurrent requests share one render.
type Server struct {
	opts   Options
	logger *log.Logger
	group  singleflight.Group
	router chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NullCache{}
		opts.CacheBackend = "none"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Registry == nil {
		opts.Registry = fonts.NewRegistry()
	}
	if opts.BaseStyle == (layout.Style{}) {
		opts.BaseStyle = layout.DefaultStyle()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/text-overlay", s.handleOverlay)
		r.Get("/fonts", s.handleFonts)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe 启动 HTTP 服务，ctx 取消后优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("服务已启动", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("正在关闭服务")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/ByLCY/textoverlay/binding"
	"github.com/ByLCY/textoverlay/cache"
	"github.com/ByLCY/textoverlay/errors"
	"github.com/ByLCY/textoverlay/fonts"
	"github.com/ByLCY/textoverlay/layout"
	"github.com/ByLCY/textoverlay/observability"
	canvasrenderer "github.com/ByLCY/textoverlay/renderer/canvas"
)

// OverlayRequest 是 POST /api/text-overlay 的请求体，样式字段与 StyleOverrides 平铺在同一层。
type OverlayRequest struct {
	ImageURL string         `json:"imageUrl"`
	Text     string         `json:"text"`
	Data     map[string]any `json:"data,omitempty"`
	Format   string         `json:"format,omitempty"`
	layout.StyleOverrides
}

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

type fontsBody struct {
	Families []string `json:"families"`
	Stack    string   `json:"stack"`
	Degraded bool     `json:"degraded"`
}

// 渲染结果按请求内容寻址，可以长期缓存。
const cacheControl = "public, max-age=31536000, immutable"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleFonts(w http.ResponseWriter, _ *http.Request) {
	stack := fonts.Resolve(s.opts.Registry.Families())
	writeJSON(w, http.StatusOK, fontsBody{
		Families: s.opts.Registry.Names(),
		Stack:    stack,
		Degraded: fonts.Degraded(stack),
	})
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("id", RequestIDFrom(ctx))

	var req OverlayRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeValidation, err, "请求体不是合法的 JSON"))
		return
	}
	if req.ImageURL == "" || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "imageUrl and text are required"})
		return
	}

	text, missing := binding.Caption(req.Text, req.Data)
	if len(missing) > 0 {
		logger.Warn("占位符未解析", "paths", missing)
	}
	style, err := req.StyleOverrides.Apply(s.opts.BaseStyle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := style.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	format, err := canvasrenderer.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := cache.Key("overlay", req.ImageURL, text, style, format)
	if data, ok := s.cached(ctx, key); ok {
		logger.Debug("命中缓存", "key", key)
		writeImage(w, format, data)
		return
	}

	// 同一 key 的并发请求只渲染一次；共享的工作不随单个请求取消。
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.render(context.WithoutCancel(ctx), key, req.ImageURL, text, style, format)
	})
	if err != nil {
		logger.Error("渲染失败", "err", err)
		s.writeError(w, err)
		return
	}
	logger.Debug("渲染完成", "shared", shared, "format", format)
	writeImage(w, format, v.([]byte))
}

func (s *Server) render(ctx context.Context, key, ref, text string, style layout.Style, format canvasrenderer.Format) ([]byte, error) {
	base, err := s.opts.Loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	out, err := s.opts.Renderer.RenderOverlay(ctx, base, text, style)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := canvasrenderer.Encode(&buf, out, format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "编码图片失败")
	}
	data := buf.Bytes()
	if err := s.opts.Cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("写入缓存失败", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, s.opts.CacheBackend, len(data))
	}
	return data, nil
}

func (s *Server) cached(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("读取缓存失败", "err", err)
		return nil, false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, s.opts.CacheBackend)
	} else {
		observability.Cache().OnCacheMiss(ctx, s.opts.CacheBackend)
	}
	return data, ok
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(code), errorBody{Error: errors.UserMessage(err), Code: code})
}

func writeImage(w http.ResponseWriter, format canvasrenderer.Format, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

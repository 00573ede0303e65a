// Package observability 提供渲染、字体回退、缓存与图片加载的事件钩子。
//
// 默认实现均为空操作；入口程序在启动时注册自定义实现即可接入指标或追踪，
// 核心包因此不依赖任何具体的观测后端。
//
//	observability.SetFontHooks(&myFontHooks{})
//	observability.Render().OnRenderStart(ctx, width, height)
package observability

import (
	"context"
	"sync"
	"time"
)

// RenderHooks receives events from the overlay pipeline.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, width, height int)
	OnRenderComplete(ctx context.Context, lines int, duration time.Duration, err error)
}

// FontHooks 报告字体问题：字体栈退化到内置 sans-serif，或字体文件无法载入。
type FontHooks interface {
	OnFallback(ctx context.Context, stack string)
	OnLoadError(ctx context.Context, family, path string, err error)
}

// CacheHooks receives events from the render cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, backend string)
	OnCacheMiss(ctx context.Context, backend string)
	OnCacheSet(ctx context.Context, backend string, size int)
}

// SourceHooks 记录源图片加载。scheme 为 http、https、data 或 file。
type SourceHooks interface {
	OnLoadStart(ctx context.Context, scheme string)
	OnLoadComplete(ctx context.Context, scheme string, size int, duration time.Duration, err error)
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, int, int)                     {}
func (NoopRenderHooks) OnRenderComplete(context.Context, int, time.Duration, error) {}

// NoopFontHooks is a no-op implementation of FontHooks.
type NoopFontHooks struct{}

func (NoopFontHooks) OnFallback(context.Context, string)                {}
func (NoopFontHooks) OnLoadError(context.Context, string, string, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnLoadStart(context.Context, string)                               {}
func (NoopSourceHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	fontHooks   FontHooks   = NoopFontHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks 注册渲染钩子，nil 被忽略。
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetFontHooks 注册字体钩子，nil 被忽略。
func SetFontHooks(h FontHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fontHooks = h
	}
}

// SetCacheHooks 注册缓存钩子，nil 被忽略。
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSourceHooks 注册图片加载钩子，nil 被忽略。
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Fonts returns the registered font hooks.
func Fonts() FontHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fontHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Source returns the registered image loading hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Reset 恢复全部空操作实现，主要供测试使用。
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	fontHooks = NoopFontHooks{}
	cacheHooks = NoopCacheHooks{}
	sourceHooks = NoopSourceHooks{}
}

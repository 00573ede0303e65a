package observability

import (
	"context"
	"testing"
	"time"
)

type recordingFontHooks struct {
	stacks []string
	failed []string
}

func (h *recordingFontHooks) OnFallback(_ context.Context, stack string) {
	h.stacks = append(h.stacks, stack)
}

func (h *recordingFontHooks) OnLoadError(_ context.Context, family, _ string, _ error) {
	h.failed = append(h.failed, family)
}

type countingRenderHooks struct {
	starts, completes int
}

func (h *countingRenderHooks) OnRenderStart(context.Context, int, int) { h.starts++ }
func (h *countingRenderHooks) OnRenderComplete(context.Context, int, time.Duration, error) {
	h.completes++
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()
	NoopRenderHooks{}.OnRenderStart(ctx, 800, 600)
	NoopRenderHooks{}.OnRenderComplete(ctx, 2, time.Millisecond, nil)
	NoopFontHooks{}.OnFallback(ctx, "sans-serif")
	NoopFontHooks{}.OnLoadError(ctx, "Noto Color Emoji", "fonts/NotoColorEmoji.ttf", nil)
	NoopCacheHooks{}.OnCacheHit(ctx, "memory")
	NoopCacheHooks{}.OnCacheMiss(ctx, "memory")
	NoopCacheHooks{}.OnCacheSet(ctx, "memory", 1024)
	NoopSourceHooks{}.OnLoadStart(ctx, "https")
	NoopSourceHooks{}.OnLoadComplete(ctx, "https", 2048, time.Millisecond, nil)
}

func TestRegistryDefaultsAndOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Fonts().(NoopFontHooks); !ok {
		t.Fatalf("Fonts() 默认应为 NoopFontHooks")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Fatalf("Render() 默认应为 NoopRenderHooks")
	}

	fh := &recordingFontHooks{}
	SetFontHooks(fh)
	Fonts().OnFallback(context.Background(), "sans-serif")
	if len(fh.stacks) != 1 || fh.stacks[0] != "sans-serif" {
		t.Fatalf("unexpected fallback events: %v", fh.stacks)
	}

	rh := &countingRenderHooks{}
	SetRenderHooks(rh)
	Render().OnRenderStart(context.Background(), 10, 10)
	Render().OnRenderComplete(context.Background(), 1, 0, nil)
	if rh.starts != 1 || rh.completes != 1 {
		t.Fatalf("render hooks not invoked: %+v", rh)
	}

	// nil 不应覆盖已注册的实现
	SetFontHooks(nil)
	if Fonts() != fh {
		t.Fatalf("SetFontHooks(nil) 不应替换已注册钩子")
	}

	Reset()
	if _, ok := Fonts().(NoopFontHooks); !ok {
		t.Fatalf("Reset 后应恢复 NoopFontHooks")
	}
}

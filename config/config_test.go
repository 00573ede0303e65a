package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/textoverlay/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	s, err := cfg.BaseStyle()
	if err != nil {
		t.Fatalf("base style: %v", err)
	}
	if s != layout.DefaultStyle() {
		t.Fatalf("base style without [style] should equal defaults: %+v", s)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "textoverlay.toml", `
[server]
addr = ":9090"
api_key = "k"
read_timeout = "5s"

[source]
allow_files = true
retries = 5

[cache]
backend = "memory"
ttl = "1h"
max_entries = 10

[style]
font_size = 48
position = "top"
enable_shadow = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	// 未出现的字段保持默认值
	if cfg.Server.WriteTimeout != 60*time.Second || cfg.Source.MaxBytes != 25<<20 {
		t.Fatalf("defaults not preserved: %+v %+v", cfg.Server, cfg.Source)
	}
	if !cfg.Source.AllowFiles || cfg.Source.Retries != 5 {
		t.Fatalf("unexpected source config: %+v", cfg.Source)
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Cache.TTL != time.Hour || cfg.Cache.MaxEntries != 10 {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}

	s, err := cfg.BaseStyle()
	if err != nil {
		t.Fatalf("base style: %v", err)
	}
	if s.FontSize != 48 || s.Position != layout.PositionTop || s.EnableShadow {
		t.Fatalf("style overrides not applied: %+v", s)
	}
	if s.TextAlign != layout.AlignCenter {
		t.Fatalf("unset style fields should keep defaults: %+v", s)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.toml", "[server]\nport = 80\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "server.port") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsInvalidStyle(t *testing.T) {
	path := writeFile(t, "bad.toml", "[style]\nposition = \"middle\"\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid style error")
	}
}

func TestLoadRejectsNonFiniteStyle(t *testing.T) {
	for _, body := range []string{
		"[style]\nfont_size = nan\n",
		"[style]\npadding = inf\n",
		"[style]\nshadow_offset_y = -inf\n",
	} {
		path := writeFile(t, "style.toml", body)
		if _, err := Load(path); err == nil {
			t.Fatalf("expected non-finite value to be rejected: %q", body)
		}
	}
}

func TestValidateCacheBackend(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	cfg.Cache.Backend = BackendRedis
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing redis_addr error")
	}
	cfg.Cache.RedisAddr = "localhost:6379"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:    "secret",
		EnvAddr:      ":7000",
		EnvFontsDir:  "/usr/share/fonts/custom",
		EnvRedisAddr: "redis:6379",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Server.APIKey != "secret" || cfg.Server.Addr != ":7000" || cfg.Fonts.Dir != "/usr/share/fonts/custom" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "redis:6379" {
		t.Fatalf("redis env should select the redis backend: %+v", cfg.Cache)
	}

	untouched := Default()
	untouched.ApplyEnv(noEnv)
	if untouched.Server != Default().Server {
		t.Fatalf("empty environment changed config")
	}
}

func TestLoadStyle(t *testing.T) {
	path := writeFile(t, "style.toml", "font_size = 30\ntext_align = \"right\"\nbackground_opacity = 0.3\n")
	o, err := LoadStyle(path)
	if err != nil {
		t.Fatalf("load style: %v", err)
	}
	s, err := o.Apply(layout.DefaultStyle())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.FontSize != 30 || s.TextAlign != layout.AlignRight || s.BackgroundOpacity != 0.3 {
		t.Fatalf("unexpected style %+v", s)
	}
}

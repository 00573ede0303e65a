// Package config 读取 textoverlay.toml 并应用环境变量覆盖。
//
//	[server]
//	addr = ":8080"
//	api_key = "secret"
//
//	[cache]
//	backend = "memory"
//
//	[style]
//	font_size = 48
//	position = "top"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/textoverlay/layout"
)

// 环境变量名。API_SECRET_KEY 与旧服务保持一致。
const (
	EnvAPIKey    = "API_SECRET_KEY"
	EnvAddr      = "TEXTOVERLAY_ADDR"
	EnvFontsDir  = "TEXTOVERLAY_FONTS_DIR"
	EnvRedisAddr = "TEXTOVERLAY_REDIS_ADDR"
)

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig          `toml:"server"`
	Fonts  FontsConfig           `toml:"fonts"`
	Source SourceConfig          `toml:"source"`
	Cache  CacheConfig           `toml:"cache"`
	Style  layout.StyleOverrides `toml:"style"`
}

type ServerConfig struct {
	Addr         string        `toml:"addr"`
	APIKey       string        `toml:"api_key"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	// MaxBodyBytes 限制请求体大小（JSON，不含图片本身）。
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

type FontsConfig struct {
	Dir    string `toml:"dir"`
	// System 为 true 时在系统字体目录中查找缺失的字体。
	System bool   `toml:"system"`
}

type SourceConfig struct {
	Timeout    time.Duration `toml:"timeout"`
	MaxBytes   int64         `toml:"max_bytes"`
	AllowFiles bool          `toml:"allow_files"`
	Retries    int           `toml:"retries"`
}

type CacheConfig struct {
	Backend    string        `toml:"backend"`
	RedisAddr  string        `toml:"redis_addr"`
	TTL        time.Duration `toml:"ttl"`
	MaxEntries int           `toml:"max_entries"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Fonts: FontsConfig{Dir: "fonts", System: true},
		Source: SourceConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 25 << 20,
			Retries:  3,
		},
		Cache: CacheConfig{
			Backend:    BackendNone,
			TTL:        24 * time.Hour,
			MaxEntries: 256,
		},
	}
}

// Load 读取 path（为空时只使用默认值），再应用环境变量并校验。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("配置 %s 含有未知字段: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// ApplyEnv 用环境变量覆盖对应字段；lookup 通常是 os.LookupEnv。
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Server.APIKey = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvFontsDir); ok && v != "" {
		c.Fonts.Dir = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.RedisAddr = v
		if c.Cache.Backend == BackendNone || c.Cache.Backend == "" {
			c.Cache.Backend = BackendRedis
		}
	}
}

// Validate checks enum values and that [style] produces a valid style.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", BackendNone, BackendMemory:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.backend = redis 需要 cache.redis_addr")
		}
	default:
		return fmt.Errorf("未知的 cache.backend %q（可选 none/memory/redis）", c.Cache.Backend)
	}
	if _, err := c.BaseStyle(); err != nil {
		return fmt.Errorf("[style]: %w", err)
	}
	return nil
}

// BaseStyle 返回默认样式叠加 [style] 之后的结果，作为 HTTP 请求的基础样式。
func (c Config) BaseStyle() (layout.Style, error) {
	s, err := c.Style.Apply(layout.DefaultStyle())
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}

// LoadStyle 读取只包含样式字段的 TOML 文件（render 命令的 --style）。
func LoadStyle(path string) (layout.StyleOverrides, error) {
	var o layout.StyleOverrides
	if _, err := toml.DecodeFile(path, &o); err != nil {
		return o, fmt.Errorf("读取样式文件 %s 失败: %w", path, err)
	}
	return o, nil
}

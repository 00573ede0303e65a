// Package cache 缓存渲染结果（编码后的图片字节）。
//
// 三种实现共享同一接口：
//   - NullCache：不缓存，默认值
//   - MemoryCache：进程内 LRU，适合单实例
//   - RedisCache：多实例共享
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores rendered images by key.
type Cache interface {
	// Get 返回缓存内容；未命中时 ok 为 false 且 err 为 nil。
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set 写入缓存；ttl <= 0 表示不过期。
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key 对任意可 JSON 编码的部件做 SHA-256，生成 prefix:hex 形式的键。
// 部件顺序参与哈希。
func Key(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// NullCache never stores anything.
type NullCache struct{}

var _ Cache = NullCache{}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Package source 负责把图片引用（http/https URL、data: URI、本地文件）加载为 image.Image。
package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/textoverlay/errors"
	"github.com/ByLCY/textoverlay/observability"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxBytes   = 25 << 20
	DefaultRetries    = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// Options configures a Loader. Zero values select the defaults above.
type Options struct {
	Timeout    time.Duration
	MaxBytes   int64
	Retries    int
	RetryDelay time.Duration
	// AllowFiles 允许 file:// 与本地路径。HTTP 服务默认关闭，CLI 默认开启。
	AllowFiles bool
	Client     *http.Client
	Logger     *log.Logger
	UserAgent  string
}

// Loader fetches and decodes source images. It is safe for concurrent use.
type Loader struct {
	opts   Options
	client *http.Client
	logger *log.Logger
}

// NewLoader creates a loader, filling unset options with defaults.
func NewLoader(opts Options) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "textoverlay/1.0"
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{opts: opts, client: client, logger: logger}
}

// Load 读取 ref 指向的图片并解码。所有失败均返回 IMAGE_LOAD 错误
// （不允许的引用形式返回 VALIDATION）。
func (l *Loader) Load(ctx context.Context, ref string) (img image.Image, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New(errors.ErrCodeValidation, "图片地址不能为空")
	}
	scheme := schemeOf(ref)
	start := time.Now()
	size := 0
	observability.Source().OnLoadStart(ctx, scheme)
	defer func() {
		observability.Source().OnLoadComplete(ctx, scheme, size, time.Since(start), err)
	}()

	var data []byte
	switch scheme {
	case "http", "https":
		data, err = l.fetch(ctx, ref)
	case "data":
		data, err = decodeDataURI(ref)
	case "file":
		if !l.opts.AllowFiles {
			return nil, errors.New(errors.ErrCodeValidation, "不允许读取本地文件: %s", ref)
		}
		data, err = l.readFile(ref)
	default:
		return nil, errors.New(errors.ErrCodeValidation, "不支持的图片地址 %q", ref)
	}
	if err != nil {
		return nil, err
	}
	size = len(data)

	img, err = imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "无法解码图片")
	}
	l.logger.Debug("图片已加载", "scheme", scheme, "bytes", size, "size", img.Bounds().Size())
	return img, nil
}

// schemeOf 返回 http、https、data 或 file；无 scheme 的引用视为本地路径。
func schemeOf(ref string) string {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"):
		return "http"
	case strings.HasPrefix(lower, "https://"):
		return "https"
	case strings.HasPrefix(lower, "data:"):
		return "data"
	case strings.HasPrefix(lower, "file://"), !strings.Contains(ref, "://"):
		return "file"
	}
	return "unknown"
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	var body []byte
	err := retry(ctx, l.opts.Retries, l.opts.RetryDelay, func() error {
		var err error
		body, err = l.get(ctx, ref)
		return err
	})
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "下载图片失败: %s", ref)
	}
	return body, nil
}

func (l *Loader) get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, err, "图片地址非法")
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Debug("请求图片失败，准备重试", "url", ref, "err", err)
		return nil, retryable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, retryable(fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeImageLoad, "下载图片失败: HTTP %d", resp.StatusCode)
	}
	return readLimited(resp.Body, l.opts.MaxBytes)
}

func (l *Loader) readFile(ref string) ([]byte, error) {
	path := ref
	if strings.HasPrefix(strings.ToLower(ref), "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeValidation, err, "文件地址非法")
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "读取图片文件失败")
	}
	defer f.Close()
	return readLimited(f, l.opts.MaxBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "读取图片数据失败")
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeImageLoad, "图片超过 %d 字节上限", limit)
	}
	return data, nil
}

// decodeDataURI 解析 data:[<mime>][;base64],<data>。
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeValidation, "data URI 缺少逗号分隔")
	}
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "data URI 解码失败")
		}
		return []byte(s), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "data URI base64 解码失败")
		}
	}
	return data, nil
}

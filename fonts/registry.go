// Package fonts 负责字体注册与字体栈选择。
//
// Registry 保存已注册的字体家族；Resolve 只依赖注入的家族集合，
// 不访问 Registry 以外的任何全局状态。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
)

// WellKnownFiles 是 RegisterDir 会在字体目录中查找的文件及其家族名。
var WellKnownFiles = map[string]string{
	"Roboto-Bold.ttf":     Primary,
	"DejaVuSans-Bold.ttf": Fallback,
	"NotoColorEmoji.ttf":  Emoji,
}

// Registry 保存已注册的字体家族，可并发使用。
// 同一家族重复注册是无害的空操作。
type Registry struct {
	mu       sync.RWMutex
	families map[string]*canvas.FontFamily
	bitmaps  map[string]BitmapFace

	genericOnce sync.Once
	generic     *canvas.FontFamily
	genericErr  error
}

// NewRegistry creates an empty registry. The generic sans-serif face is always available.
func NewRegistry() *Registry {
	return &Registry{
		families: map[string]*canvas.FontFamily{},
		bitmaps:  map[string]BitmapFace{},
	}
}

// Register 从字节数据注册一个家族（以粗体样式载入，与叠字渲染的 bold 字体一致）。
// 没有轮廓的彩色位图字体（CBDT / sbix）注册为 BitmapFace。
func (r *Registry) Register(family string, data []byte) error {
	if family == "" {
		return fmt.Errorf("字体家族名不能为空")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.has(family) {
		return nil
	}
	f := canvas.NewFontFamily(family)
	if err := f.LoadFont(data, 0, canvas.FontBold); err != nil {
		bf, berr := ParseBitmapFont(data)
		if berr != nil {
			return fmt.Errorf("载入字体 %s 失败: %w", family, err)
		}
		r.bitmaps[family] = bf
		return nil
	}
	r.families[family] = f
	return nil
}

// RegisterBitmap 以 family 注册一个位图字体面。
func (r *Registry) RegisterBitmap(family string, face BitmapFace) error {
	if family == "" || face == nil {
		return fmt.Errorf("字体家族名与位图字体不能为空")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.has(family) {
		return nil
	}
	r.bitmaps[family] = face
	return nil
}

// RegisterFile registers the font file at path under family.
func (r *Registry) RegisterFile(family, path string) error {
	if r.Has(family) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	return r.Register(family, data)
}

// LoadError 记录一个无法载入的字体文件。
type LoadError struct {
	Family string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("载入字体文件 %s (%s) 失败: %v", e.Path, e.Family, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RegisterDir 注册 dir 中存在的 WellKnownFiles，缺失的文件直接跳过。
// 单个文件载入失败不会中断扫描，失败项在 failed 中返回。
// registered 是本次成功注册（或已注册）的家族名。
func (r *Registry) RegisterDir(dir string) (registered []string, failed []*LoadError) {
	files := make([]string, 0, len(WellKnownFiles))
	for file := range WellKnownFiles {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		family := WellKnownFiles[file]
		if err := r.RegisterFile(family, path); err != nil {
			failed = append(failed, &LoadError{Family: family, Path: path, Err: err})
			continue
		}
		registered = append(registered, family)
	}
	return registered, failed
}

// Has reports whether family is registered.
func (r *Registry) Has(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.has(family)
}

func (r *Registry) has(family string) bool {
	if _, ok := r.families[family]; ok {
		return true
	}
	_, ok := r.bitmaps[family]
	return ok
}

// Families 返回当前已注册家族名的快照。
func (r *Registry) Families() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.families)+len(r.bitmaps))
	for name := range r.families {
		out[name] = true
	}
	for name := range r.bitmaps {
		out[name] = true
	}
	return out
}

// Names returns the registered family names sorted alphabetically.
func (r *Registry) Names() []string {
	set := r.Families()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Family 返回家族；sans-serif 总是映射到内置的 Go Bold 字体。
func (r *Registry) Family(name string) (*canvas.FontFamily, bool) {
	if name == Generic {
		f, err := r.genericFamily()
		return f, err == nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[name]
	return f, ok
}

// Bitmap 返回以位图字体注册的家族。
func (r *Registry) Bitmap(name string) (BitmapFace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.bitmaps[name]
	return f, ok
}

func (r *Registry) genericFamily() (*canvas.FontFamily, error) {
	r.genericOnce.Do(func() {
		f := canvas.NewFontFamily(Generic)
		if err := f.LoadFont(gobold.TTF, 0, canvas.FontBold); err != nil {
			r.genericErr = fmt.Errorf("载入内置字体失败: %w", err)
			return
		}
		r.generic = f
	})
	return r.generic, r.genericErr
}

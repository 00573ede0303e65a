package fonts

import (
	"sort"

	"github.com/flopp/go-findfont"
)

// RegisterSystem 在系统字体目录中查找尚未注册的 WellKnownFiles 并注册。
// 找不到或无法载入的文件被跳过；返回本次新注册的家族名。
func (r *Registry) RegisterSystem() []string {
	files := make([]string, 0, len(WellKnownFiles))
	for file := range WellKnownFiles {
		files = append(files, file)
	}
	sort.Strings(files)

	var registered []string
	for _, file := range files {
		family := WellKnownFiles[file]
		if r.Has(family) {
			continue
		}
		path, err := findfont.Find(file)
		if err != nil {
			continue
		}
		if err := r.RegisterFile(family, path); err != nil {
			continue
		}
		registered = append(registered, family)
	}
	return registered
}

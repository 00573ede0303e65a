package layout

import (
	"encoding/json"
	"io"
)

// WriteDebugJSON 以缩进 JSON 输出布局结果（行文本、坐标与背景框），供 render --debug 使用。
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

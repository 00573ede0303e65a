// Package css 解析样式中出现的 CSS 风格取值：font-family 字体栈与颜色。
package css

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	cssLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Hex", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)%?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[(),/]`},
	})

	fontStackParser = participle.MustBuild[FontStack](
		participle.Lexer(cssLexer),
		participle.Elide("Whitespace"),
	)

	colorParser = participle.MustBuild[ColorValue](
		participle.Lexer(cssLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// FontStack is a comma separated font-family list.
type FontStack struct {
	Families []*Family `parser:"@@ ( ',' @@ )*"`
}

// Family 可以是带引号的名称，也可以是若干个空格分隔的标识符（如 DejaVu Sans）。
type Family struct {
	Quoted *QuotedString `parser:"  @String"`
	Words  []string      `parser:"| @Ident+"`
}

// Name returns the family name with quotes removed.
func (f *Family) Name() string {
	if f.Quoted != nil {
		return string(*f.Quoted)
	}
	return strings.Join(f.Words, " ")
}

// ColorValue 对应 #hex、rgb()/rgba() 或颜色关键字。
type ColorValue struct {
	Hex  *string    `parser:"  @Hex"`
	Func *ColorFunc `parser:"| @@"`
	Name *string    `parser:"| @Ident"`
}

// ColorFunc captures rgb(...) / rgba(...) arguments; both comma and slash separators are accepted.
type ColorFunc struct {
	Name string   `parser:"@Ident '('"`
	Args []string `parser:"@Number ( ( ',' | '/' )? @Number )* ')'"`
}

// QuotedString strips single or double quotes on capture.
type QuotedString string

// Capture implements participle.Capture.
func (s *QuotedString) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("quoted string capture requires value")
	}
	raw := values[0]
	if len(raw) < 2 {
		return fmt.Errorf("非法字符串 %s", raw)
	}
	unquoted := raw[1 : len(raw)-1]
	unquoted = strings.ReplaceAll(unquoted, `\"`, `"`)
	unquoted = strings.ReplaceAll(unquoted, `\'`, `'`)
	*s = QuotedString(unquoted)
	return nil
}

// ParseFontStack 将 `Roboto, "Noto Color Emoji", sans-serif` 解析为字体名列表。
func ParseFontStack(stack string) ([]string, error) {
	parsed, err := fontStackParser.ParseString("", stack)
	if err != nil {
		return nil, fmt.Errorf("解析字体栈 %q 失败: %w", stack, err)
	}
	names := make([]string, 0, len(parsed.Families))
	for _, f := range parsed.Families {
		if name := f.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// FormatFontStack 是 ParseFontStack 的逆操作，包含空格的名称会被加上双引号。
func FormatFontStack(families []string) string {
	parts := make([]string, 0, len(families))
	for _, f := range families {
		if strings.ContainsAny(f, " \t") {
			parts = append(parts, `"`+f+`"`)
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, ", ")
}

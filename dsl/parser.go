package dsl

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	templateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Open", Pattern: `\{`},
		{Name: "Close", Pattern: `\}`},
		{Name: "Text", Pattern: `[^{}]+`},
	})

	// Placeholder 分支最多消费两个记号后失败（如 "{a{"），回溯需要足够的前瞻。
	templateParser = participle.MustBuild[Template](
		participle.Lexer(templateLexer),
		participle.UseLookahead(4),
	)
)

// Template is the root AST node for a `{column}` placeholder string such as an
// email subject, an email body or an attachment name.
type Template struct {
	Parts []*Part `parser:"@@*"`
}

// Part is either a placeholder, literal text, or a stray brace kept verbatim.
type Part struct {
	Placeholder *Placeholder `parser:"  @@"`
	Text        *string      `parser:"| @Text"`
	Brace       *string      `parser:"| @( Open | Close )"`
}

// Placeholder captures `{key}`. Key keeps its surrounding whitespace.
type Placeholder struct {
	Pos lexer.Position `parser:"" json:"-"`
	Key string         `parser:"Open @Text Close"`
}

// Name returns the trimmed placeholder key.
func (p *Placeholder) Name() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Key)
}

// Keys lists placeholder names in order of appearance, duplicates included.
func (t *Template) Keys() []string {
	if t == nil {
		return nil
	}
	var keys []string
	for _, part := range t.Parts {
		if part.Placeholder != nil {
			keys = append(keys, part.Placeholder.Name())
		}
	}
	return keys
}

// Literal reports whether the template contains no placeholder.
func (t *Template) Literal() bool { return len(t.Keys()) == 0 }

// Render 逐段拼接模板，占位符交给 resolve 求值。
func (t *Template) Render(resolve func(key string) string) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range t.Parts {
		switch {
		case part.Placeholder != nil:
			if resolve != nil {
				b.WriteString(resolve(part.Placeholder.Name()))
			}
		case part.Text != nil:
			b.WriteString(*part.Text)
		case part.Brace != nil:
			b.WriteString(*part.Brace)
		}
	}
	return b.String()
}

// Parse parses a placeholder template from an io.Reader.
func Parse(r io.Reader) (*Template, error) {
	tpl, err := templateParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return tpl, nil
}

// ParseString parses a placeholder template from a string.
func ParseString(input string) (*Template, error) {
	tpl, err := templateParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return tpl, nil
}

package binding

import (
	"strings"
	"sync"

	"github.com/NastasiaHalabi/CertificateGenerator/dsl"
)

// 保留键：由映射阶段写入，优先于普通列。
const (
	EmailKey    = "__email"
	FilenameKey = "__filename"
)

// Lookup 在一行数据中查找列值：先精确匹配，再按去空白、忽略大小写匹配。
// 两个子系统（变量取值与模板填充）共用这一规则。
func Lookup(row map[string]string, key string) (string, bool) {
	if row == nil {
		return "", false
	}
	if val, ok := row[key]; ok {
		return val, true
	}
	want := normalizeKey(key)
	if want == "" {
		return "", false
	}
	for k, v := range row {
		if normalizeKey(k) == want {
			return v, true
		}
	}
	return "", false
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Template 是编译后的 {column} 模板，可对多行重复执行。
type Template struct {
	src string
	ast *dsl.Template
}

// Compile 解析模板；解析失败时退化为原样输出。
func Compile(text string) *Template {
	tpl := &Template{src: text}
	if ast, err := dsl.ParseString(text); err == nil {
		tpl.ast = ast
	}
	return tpl
}

// Execute 用行数据填充占位符，未解析的占位符替换为空字符串。
func (t *Template) Execute(row map[string]string) string {
	if t == nil {
		return ""
	}
	if t.ast == nil {
		return t.src
	}
	return t.ast.Render(func(key string) string {
		val, _ := Lookup(row, key)
		return val
	})
}

// Source 返回模板原文。
func (t *Template) Source() string {
	if t == nil {
		return ""
	}
	return t.src
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Template{}
)

// Interpolate 将文本中的 {column} 替换为行数据中的值。
func Interpolate(text string, row map[string]string) string {
	if !strings.ContainsRune(text, '{') {
		return text
	}
	cacheMu.Lock()
	tpl, ok := cache[text]
	if !ok {
		tpl = Compile(text)
		if len(cache) < 256 {
			cache[text] = tpl
		}
	}
	cacheMu.Unlock()
	return tpl.Execute(row)
}

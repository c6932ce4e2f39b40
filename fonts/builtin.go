package fonts

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

var builtinFonts = map[string][]byte{
	SansRegular:    goregular.TTF,
	SansBold:       gobold.TTF,
	SansItalic:     goitalic.TTF,
	SansBoldItalic: gobolditalic.TTF,
	MonoRegular:    gomono.TTF,
	MonoBold:       gomonobold.TTF,
	MonoItalic:     gomonoitalic.TTF,
	MonoBoldItalic: gomonobolditalic.TTF,
}

// Builtin 提供随二进制分发的 Go 字体（sans 与 mono 两组四种样式）。
// 不含 serif、Public Sans 与阿拉伯字体，这些需要从字体目录加载。
type Builtin struct{}

// Font implements Provider.
func (Builtin) Font(name string) ([]byte, error) {
	data, ok := builtinFonts[name]
	if !ok {
		return nil, fmt.Errorf("%w: built-in %q", ErrFontNotFound, name)
	}
	return data, nil
}

// Load 返回内置字体的字节数据。
func Load(name string) ([]byte, error) { return Builtin{}.Font(name) }

var _ Provider = Builtin{}

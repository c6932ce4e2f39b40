package layout

// Typesetter 提供字体度量：返回文本在给定字体与字号（pt）下的宽度（pt）。
type Typesetter interface {
	TextWidth(font FontKey, size float64, text string) (float64, error)
}

// Shaper 将一行逻辑文本转换为可测量、可绘制的形式。
type Shaper interface {
	Shape(line string) string
}

// ShaperFunc adapts a plain function to Shaper.
type ShaperFunc func(line string) string

// Shape implements Shaper.
func (f ShaperFunc) Shape(line string) string { return f(line) }

package layout

// 该文件定义证书变量、数据行与绘制指令，供排版、渲染与调试 JSON 共用。
// 坐标单位：模板像素按 PDF 点（pt）处理。

// Align 是文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Layer 决定变量相对其他变量的绘制先后。
type Layer string

const (
	LayerFront Layer = "front"
	LayerBack  Layer = "back"
)

// TextVariable 是绑定在模板上的文本占位符；x/y 以模板左上角为原点。
type TextVariable struct {
	ID            string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string  `json:"name" yaml:"name"`
	X             float64 `json:"x" yaml:"x"`
	Y             float64 `json:"y" yaml:"y"`
	Text          string  `json:"text" yaml:"text"`
	UseSampleText bool    `json:"useSampleText,omitempty" yaml:"useSampleText,omitempty"`
	FontSize      float64 `json:"fontSize" yaml:"fontSize"`
	FontFamily    string  `json:"fontFamily" yaml:"fontFamily"`
	FontWeight    string  `json:"fontWeight" yaml:"fontWeight"`
	FontStyle     string  `json:"fontStyle" yaml:"fontStyle"`
	Color         string  `json:"color" yaml:"color"`
	Rotation      float64 `json:"rotation" yaml:"rotation"`
	TextAlign     Align   `json:"textAlign" yaml:"textAlign"`
	LetterSpacing float64 `json:"letterSpacing" yaml:"letterSpacing"`
	LineHeight    float64 `json:"lineHeight" yaml:"lineHeight"`
	Layer         Layer   `json:"layer,omitempty" yaml:"layer,omitempty"`
	WrapText      bool    `json:"wrapText,omitempty" yaml:"wrapText,omitempty"`
	WrapWidth     float64 `json:"wrapWidth,omitempty" yaml:"wrapWidth,omitempty"`
}

// EffectiveLayer 返回变量所在图层，缺省为 front。
func (v TextVariable) EffectiveLayer() Layer {
	if v.Layer == LayerBack {
		return LayerBack
	}
	return LayerFront
}

// Row 是一张证书的数据：列名（或变量名）到字符串值。
type Row map[string]string

// Size 是页面尺寸（pt）。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DrawInstruction 是一行已排版文本的绘制指令。
// X/Y 为 PDF 坐标（左下角原点，Y 为基线），单位 pt。
type DrawInstruction struct {
	Variable      string    `json:"variable"`
	Line          int       `json:"line"`
	Text          string    `json:"text"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	Width         float64   `json:"width"`
	Rotation      float64   `json:"rotation,omitempty"`
	Font          FontKey   `json:"font"`
	FontSize      float64   `json:"fontSize"`
	Color         Color     `json:"color"`
	LetterSpacing float64   `json:"letterSpacing,omitempty"`
	Arabic        bool      `json:"arabic,omitempty"`
	Offsets       []float64 `json:"offsets,omitempty"` // 阿拉伯文伪粗体的额外绘制偏移
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Normalized 返回 0-1 区间的 RGB 分量。
func (c Color) Normalized() (r, g, b float64) {
	return float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

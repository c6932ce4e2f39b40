package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/NastasiaHalabi/CertificateGenerator/binding"
	"github.com/NastasiaHalabi/CertificateGenerator/shaping"
)

// Engine 为单个变量与单行数据计算逐行绘制指令。
type Engine struct {
	Typesetter Typesetter
	Shaper     Shaper // 为空时使用 shaping.Shape
}

// ResolveValue 取变量在该行的值：UseSampleText 时直接用示例文字；
// 否则按变量名查找（精确优先，其次忽略大小写），缺失或为空时回退到示例文字。
func ResolveValue(v TextVariable, row Row) string {
	if v.UseSampleText {
		return v.Text
	}
	if val, ok := binding.Lookup(row, v.Name); ok && val != "" {
		return val
	}
	return v.Text
}

// SplitLines 按显式换行拆分，去掉行尾的 \r。
func SplitLines(value string) []string {
	lines := strings.Split(value, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}

// Layout 计算变量在页面上的所有行。page 为页面尺寸（pt）。
func (e *Engine) Layout(v TextVariable, row Row, page Size) ([]DrawInstruction, error) {
	if e == nil || e.Typesetter == nil {
		return nil, errors.New("排版引擎缺少 Typesetter")
	}
	size := v.FontSize
	lineHeight := v.LineHeight
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}
	col, err := ParseColor(v.Color)
	if err != nil {
		col = Color{}
	}
	offsets := shaping.FauxBoldOffsets(v.FontWeight)

	var out []DrawInstruction
	lineIndex := 0
	for _, raw := range SplitLines(ResolveValue(v, row)) {
		arabic := shaping.ContainsArabic(raw)
		key := ResolveFontKey(v, arabic)
		measure := func(s string) (float64, error) {
			if arabic {
				s = e.shape(s)
			}
			return e.Typesetter.TextWidth(key, size, s)
		}

		parts := []string{raw}
		if v.WrapText && v.WrapWidth > 0 {
			parts, err = WrapLine(raw, v.WrapWidth, measure)
			if err != nil {
				return nil, fmt.Errorf("变量 %s 折行失败: %w", v.Name, err)
			}
		}

		for _, part := range parts {
			text := part
			if arabic {
				text = e.shape(part)
			}
			width, err := e.Typesetter.TextWidth(key, size, text)
			if err != nil {
				return nil, fmt.Errorf("变量 %s 测量失败: %w", v.Name, err)
			}
			baseline := BaselineRatio * size
			if arabic {
				baseline *= ArabicBaseline
			}
			yLine := v.Y + float64(lineIndex)*lineHeight*size

			ins := DrawInstruction{
				Variable:      v.Name,
				Line:          lineIndex,
				Text:          text,
				X:             AlignX(v.TextAlign, v.X, width, page.Width),
				Y:             page.Height - yLine - baseline,
				Width:         width,
				Rotation:      v.Rotation,
				Font:          key,
				FontSize:      size,
				Color:         col,
				LetterSpacing: v.LetterSpacing,
				Arabic:        arabic,
			}
			if arabic {
				ins.Offsets = offsets
			}
			out = append(out, ins)
			lineIndex++
		}
	}
	return out, nil
}

func (e *Engine) shape(s string) string {
	if e.Shaper != nil {
		return e.Shaper.Shape(s)
	}
	return shaping.Shape(s)
}

// AlignX 计算行的绘制起点：居中为 x-w/2，右对齐为 x-w，左对齐时不超过页面右边界。
func AlignX(align Align, x, width, pageWidth float64) float64 {
	switch Align(strings.ToLower(string(align))) {
	case AlignCenter:
		return x - width/2
	case AlignRight:
		return x - width
	default:
		return math.Min(x, pageWidth)
	}
}

// WrapLine 贪心折行：在宽度允许时不断追加单词；单个单词超宽时逐字符拆分。
// 单词以空白分隔，折行后的行内单词间以单个空格连接。
func WrapLine(text string, maxWidth float64, measure func(string) (float64, error)) ([]string, error) {
	if maxWidth <= 0 {
		return []string{text}, nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}, nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		test := word
		if current != "" {
			test = current + " " + word
		}
		w, err := measure(test)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		w, err = measure(word)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth {
			current = word
			continue
		}
		chunk := ""
		for _, r := range word {
			next := chunk + string(r)
			w, err := measure(next)
			if err != nil {
				return nil, err
			}
			if w <= maxWidth {
				chunk = next
				continue
			}
			if chunk != "" {
				lines = append(lines, chunk)
			}
			chunk = string(r)
		}
		current = chunk
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}

// OrderByLayer 返回稳定排序后的副本：back 图层在前，front 在后。
func OrderByLayer(vars []TextVariable) []TextVariable {
	out := make([]TextVariable, len(vars))
	copy(out, vars)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveLayer() == LayerBack && out[j].EffectiveLayer() != LayerBack
	})
	return out
}

package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Conversion constants between pt and mm. Template pixels are treated as pt;
// the canvas backend works in mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// 排版常量（相对字号）。
const (
	DefaultLineHeight = 1.2
	BaselineRatio     = 0.88
	ArabicBaseline    = 0.85
)

// ToMM converts points to millimeters.
func ToMM(pt float64) float64 { return pt * PtToMm }

// ToPT converts millimeters to points.
func ToPT(mm float64) float64 { return mm * MmToPt }

// ParseColor 解析 #rgb / #rrggbb / #rrggbbaa；不足 6 位时末尾补 0，透明度被忽略。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch {
	case len(value) == 3:
		value = strings.Repeat(value[0:1], 2) + strings.Repeat(value[1:2], 2) + strings.Repeat(value[2:3], 2)
	case len(value) < 6:
		value += strings.Repeat("0", 6-len(value))
	case len(value) == 6, len(value) == 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	r, errR := strconv.ParseUint(value[0:2], 16, 8)
	g, errG := strconv.ParseUint(value[2:4], 16, 8)
	b, errB := strconv.ParseUint(value[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return Color{R: int(r), G: int(g), B: int(b)}, nil
}

// ParseWeight 将 "normal"/"bold"/"100".."900" 转为数值字重，无法识别时为 400。
func ParseWeight(weight string) int {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "", "normal":
		return 400
	case "bold":
		return 700
	}
	n, err := strconv.Atoi(w)
	if err != nil || n <= 0 {
		return 400
	}
	return n
}

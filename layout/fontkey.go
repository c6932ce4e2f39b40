package layout

import (
	"fmt"
	"strings"
)

// FamilyToken identifies a resolved font family.
type FamilyToken int

const (
	FamilySans FamilyToken = iota
	FamilySerif
	FamilyMono
	FamilyPublicSans
	FamilyArabic
)

func (f FamilyToken) String() string {
	switch f {
	case FamilySerif:
		return "serif"
	case FamilyMono:
		return "mono"
	case FamilyPublicSans:
		return "publicsans"
	case FamilyArabic:
		return "arabic"
	default:
		return "sans"
	}
}

// WeightBucket groups numeric weights into the variants a family ships.
type WeightBucket int

const (
	WeightRegular WeightBucket = iota
	WeightBold
	WeightExtraBold
)

func (w WeightBucket) String() string {
	switch w {
	case WeightBold:
		return "bold"
	case WeightExtraBold:
		return "extrabold"
	default:
		return "regular"
	}
}

// FontKey 是字体缓存键：家族 + 字重档 + 是否斜体；阿拉伯字体使用单独的 ArabicKey。
type FontKey struct {
	Family FamilyToken  `json:"family"`
	Weight WeightBucket `json:"weight"`
	Italic bool         `json:"italic,omitempty"`
}

// ArabicKey is the single key used for every line containing Arabic script.
var ArabicKey = FontKey{Family: FamilyArabic}

func (k FontKey) String() string {
	if k.Family == FamilyArabic {
		return "arabic-regular"
	}
	s := fmt.Sprintf("%s-%s", k.Family, k.Weight)
	if k.Italic {
		s += "-italic"
	}
	return s
}

// ResolveFontKey 按以下顺序解析字体，先匹配者生效：
//  1. 行内含阿拉伯文字 → ArabicKey（不论请求的家族）；
//  2. 家族名包含 "public sans" → Public Sans，字重 ≥800 为特粗，≥700 或 "bold" 为粗体；
//  3. 包含 "times" → serif，包含 "courier" → mono，其余 → sans；
//     三者的粗体阈值为 ≥600，斜体取 fontStyle == "italic"。
func ResolveFontKey(v TextVariable, arabic bool) FontKey {
	if arabic {
		return ArabicKey
	}
	family := strings.ToLower(v.FontFamily)
	weight := ParseWeight(v.FontWeight)
	italic := strings.EqualFold(strings.TrimSpace(v.FontStyle), "italic")

	if strings.Contains(family, "public sans") {
		bucket := WeightRegular
		switch {
		case weight >= 800:
			bucket = WeightExtraBold
		case weight >= 700:
			bucket = WeightBold
		}
		// Public Sans 只提供直立字形
		return FontKey{Family: FamilyPublicSans, Weight: bucket}
	}

	key := FontKey{Family: FamilySans, Italic: italic}
	switch {
	case strings.Contains(family, "times"):
		key.Family = FamilySerif
	case strings.Contains(family, "courier"):
		key.Family = FamilyMono
	}
	if weight >= 600 {
		key.Weight = WeightBold
	}
	return key
}

package shaping

// forms 保存一个字母的四种呈现形式：孤立、词尾、词首、词中；0 表示该形式不存在。
type forms [4]rune

const (
	isolated = iota
	final
	initial
	medial
)

const (
	lam     = 'ل'
	tatweel = 'ـ'
)

// 双向连接字母拥有全部四种形式；右连接字母只有孤立与词尾。
var letterForms = map[rune]forms{
	'ء': {0xFE80, 0, 0, 0},
	'آ': {0xFE81, 0xFE82, 0, 0},
	'أ': {0xFE83, 0xFE84, 0, 0},
	'ؤ': {0xFE85, 0xFE86, 0, 0},
	'إ': {0xFE87, 0xFE88, 0, 0},
	'ئ': {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	'ا': {0xFE8D, 0xFE8E, 0, 0},
	'ب': {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	'ة': {0xFE93, 0xFE94, 0, 0},
	'ت': {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	'ث': {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	'ج': {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	'ح': {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	'خ': {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	'د': {0xFEA9, 0xFEAA, 0, 0},
	'ذ': {0xFEAB, 0xFEAC, 0, 0},
	'ر': {0xFEAD, 0xFEAE, 0, 0},
	'ز': {0xFEAF, 0xFEB0, 0, 0},
	'س': {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	'ش': {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	'ص': {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	'ض': {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	'ط': {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	'ظ': {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	'ع': {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	'غ': {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	'ف': {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	'ق': {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	'ك': {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	'ل': {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	'م': {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	'ن': {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	'ه': {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	'و': {0xFEED, 0xFEEE, 0, 0},
	'ى': {0xFEEF, 0xFEF0, 0, 0},
	'ي': {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
	// 波斯语/乌尔都语常用扩展字母
	'ٱ': {0xFB50, 0xFB51, 0, 0},
	'پ': {0xFB56, 0xFB57, 0xFB58, 0xFB59},
	'چ': {0xFB7A, 0xFB7B, 0xFB7C, 0xFB7D},
	'ژ': {0xFB8A, 0xFB8B, 0, 0},
	'ک': {0xFB8E, 0xFB8F, 0xFB90, 0xFB91},
	'گ': {0xFB92, 0xFB93, 0xFB94, 0xFB95},
	'ی': {0xFBFC, 0xFBFD, 0xFBFE, 0xFBFF},
}

// lam 后接 alef 变体时合成的连字（孤立、词尾）。
var lamAlef = map[rune][2]rune{
	'آ': {0xFEF5, 0xFEF6},
	'أ': {0xFEF7, 0xFEF8},
	'إ': {0xFEF9, 0xFEFA},
	'ا': {0xFEFB, 0xFEFC},
}

// transparent 报告 r 是否为不参与连接判断的附加符号（harakat 等）。
func transparent(r rune) bool {
	switch {
	case r >= 0x064B && r <= 0x065F,
		r == 0x0670,
		r >= 0x06D6 && r <= 0x06DC,
		r >= 0x06DF && r <= 0x06E4,
		r == 0x06E7, r == 0x06E8,
		r >= 0x06EA && r <= 0x06ED:
		return true
	}
	return false
}

// joinsNext reports whether r connects to the letter that follows it.
func joinsNext(r rune) bool {
	if r == tatweel {
		return true
	}
	f, ok := letterForms[r]
	return ok && f[initial] != 0
}

// joinsPrev reports whether r can connect to the letter before it.
func joinsPrev(r rune) bool {
	if r == tatweel {
		return true
	}
	f, ok := letterForms[r]
	return ok && f[final] != 0
}

// neighbor returns the index of the nearest non-transparent rune from i in direction step, or -1.
func neighbor(runes []rune, i, step int) int {
	for j := i + step; j >= 0 && j < len(runes); j += step {
		if !transparent(runes[j]) {
			return j
		}
	}
	return -1
}

// Reshape replaces Arabic letters with their contextual presentation forms
// and fuses lam-alef pairs. The result is still in logical order.
func Reshape(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		f, ok := letterForms[r]
		if !ok {
			out = append(out, r)
			continue
		}

		prev := neighbor(runes, i, -1)
		connectPrev := prev >= 0 && joinsNext(runes[prev])

		if r == lam {
			if next := neighbor(runes, i, 1); next >= 0 {
				if lig, ok := lamAlef[runes[next]]; ok {
					if connectPrev {
						out = append(out, lig[1])
					} else {
						out = append(out, lig[0])
					}
					// lam 与 alef 之间的附加符号保留在连字之后
					out = append(out, runes[i+1:next]...)
					i = next
					continue
				}
			}
		}

		next := neighbor(runes, i, 1)
		connectNext := f[initial] != 0 && next >= 0 && joinsPrev(runes[next])

		form := isolated
		switch {
		case connectPrev && connectNext:
			form = medial
		case connectPrev:
			form = final
		case connectNext:
			form = initial
		}
		if f[form] == 0 {
			if connectPrev && f[final] != 0 {
				form = final
			} else {
				form = isolated
			}
		}
		out = append(out, f[form])
	}
	return string(out)
}

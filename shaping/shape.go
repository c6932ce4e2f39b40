package shaping

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/bidi"
)

// ContainsArabic reports whether s has a code point in the Arabic,
// Arabic Supplement or Arabic Extended-A blocks.
func ContainsArabic(s string) bool {
	for _, r := range s {
		if isArabic(r) {
			return true
		}
	}
	return false
}

func isArabic(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) ||
		(r >= 0x0750 && r <= 0x077F) ||
		(r >= 0x08A0 && r <= 0x08FF)
}

// Shape returns line unchanged unless it contains Arabic, in which case the
// whole line is reshaped and put into visual (left-to-right drawing) order.
func Shape(line string) string {
	if !ContainsArabic(line) {
		return line
	}
	return Visual(Reshape(line))
}

// Visual 按 Unicode 双向算法把逻辑顺序的文本转换为从左到右绘制的顺序。
// 段落方向取第一个强方向字符，右到左的片段整体反转。
func Visual(s string) string {
	rtl := baseRightToLeft(s)
	var p bidi.Paragraph
	opts := []bidi.Option{}
	if rtl {
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}
	if _, err := p.SetString(s, opts...); err != nil {
		return fallbackVisual(s, rtl)
	}
	order, err := p.Order()
	if err != nil || order.NumRuns() == 0 {
		return fallbackVisual(s, rtl)
	}

	runs := make([]string, order.NumRuns())
	for i := range runs {
		run := order.Run(i)
		text := run.String()
		if run.Direction() == bidi.RightToLeft {
			text = bidi.ReverseString(text)
		}
		runs[i] = text
	}
	if rtl {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}
	return strings.Join(runs, "")
}

func fallbackVisual(s string, rtl bool) string {
	if rtl {
		return bidi.ReverseString(s)
	}
	return s
}

func baseRightToLeft(s string) bool {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

// Cache 记忆单个文档内的整形结果；同一模板文字在多行数据中反复出现。
type Cache struct {
	mu    sync.Mutex
	items map[string]string
}

// NewCache creates an empty shaping cache.
func NewCache() *Cache { return &Cache{items: map[string]string{}} }

// Shape is Shape with memoization. A nil cache shapes without memoizing.
func (c *Cache) Shape(line string) string {
	if c == nil {
		return Shape(line)
	}
	if !ContainsArabic(line) {
		return line
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if out, ok := c.items[line]; ok {
		return out
	}
	out := Shape(line)
	c.items[line] = out
	return out
}

// Len returns the number of memoized lines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// FauxBoldOffsets 返回阿拉伯文行的附加绘制偏移：粗体（"bold" 或 ≥700）加 0.6，≥800 再加 1.1。
// 阿拉伯字体只有常规字重，以多次错位绘制模拟加粗。
func FauxBoldOffsets(weight string) []float64 {
	w := strings.ToLower(strings.TrimSpace(weight))
	numeric, err := strconv.Atoi(w)
	if err != nil {
		numeric = 0
	}
	var offsets []float64
	if w == "bold" || numeric >= 700 {
		offsets = append(offsets, 0.6)
	}
	if numeric >= 800 {
		offsets = append(offsets, 1.1)
	}
	return offsets
}

package layout

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubTypesetter 是一个最小实现：每个字符宽度为 advance*size，避免依赖真实字体。
type stubTypesetter struct {
	advance float64
	calls   int
	fail    bool
}

func (s *stubTypesetter) TextWidth(font FontKey, size float64, text string) (float64, error) {
	s.calls++
	if s.fail {
		return 0, errors.New("boom")
	}
	adv := s.advance
	if adv == 0 {
		adv = 0.5
	}
	return float64(utf8.RuneCountInString(text)) * adv * size, nil
}

func newEngine() (*Engine, *stubTypesetter) {
	ts := &stubTypesetter{advance: 0.5}
	return &Engine{Typesetter: ts}, ts
}

const eps = 1e-9

// TestCenteredScenario 模板 1000×700，name 居中于 (500,100)。
func TestCenteredScenario(t *testing.T) {
	e, _ := newEngine()
	v := TextVariable{Name: "name", X: 500, Y: 100, FontSize: 20, TextAlign: AlignCenter, Color: "#000"}
	got, err := e.Layout(v, Row{"name": "Ada Lovelace"}, Size{Width: 1000, Height: 700})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got))
	}
	ins := got[0]
	wantWidth := 12 * 0.5 * 20.0
	if math.Abs(ins.Width-wantWidth) > eps {
		t.Fatalf("width mismatch: got=%g want=%g", ins.Width, wantWidth)
	}
	if math.Abs(ins.X-(500-wantWidth/2)) > eps {
		t.Fatalf("x mismatch: got=%g want=%g", ins.X, 500-wantWidth/2)
	}
	wantY := 700 - 100 - 0.88*20
	if math.Abs(ins.Y-wantY) > eps {
		t.Fatalf("y mismatch: got=%g want=%g", ins.Y, wantY)
	}
	if ins.Text != "Ada Lovelace" || ins.Arabic {
		t.Fatalf("unexpected instruction: %+v", ins)
	}
}

func TestUnparseableColorDrawsBlack(t *testing.T) {
	e, _ := newEngine()
	for _, c := range []string{"red", "#zz0000", ""} {
		v := TextVariable{Name: "name", X: 10, Y: 10, FontSize: 12, Color: c}
		got, err := e.Layout(v, Row{"name": "Ada"}, Size{Width: 100, Height: 100})
		if err != nil {
			t.Fatalf("color %q: Layout error: %v", c, err)
		}
		if len(got) != 1 || got[0].Color != (Color{}) {
			t.Fatalf("color %q: got %+v, want black", c, got)
		}
	}
}

func TestAlignX(t *testing.T) {
	cases := []struct {
		align Align
		x     float64
		want  float64
	}{
		{AlignLeft, 100, 100},
		{AlignCenter, 100, 60},
		{AlignRight, 100, 20},
		{"", 100, 100},
		{"CENTER", 100, 60},
		{AlignLeft, 1200, 1000},
	}
	for _, tc := range cases {
		if got := AlignX(tc.align, tc.x, 80, 1000); math.Abs(got-tc.want) > eps {
			t.Errorf("AlignX(%q, %g) = %g, want %g", tc.align, tc.x, got, tc.want)
		}
	}
}

func TestLineCountWithoutWrap(t *testing.T) {
	e, _ := newEngine()
	values := []string{"one", "one\ntwo", "a\n\nb\n", "x\r\ny"}
	for _, val := range values {
		v := TextVariable{Name: "body", X: 10, Y: 10, FontSize: 10, WrapWidth: 5}
		got, err := e.Layout(v, Row{"body": val}, Size{Width: 500, Height: 500})
		if err != nil {
			t.Fatalf("Layout error: %v", err)
		}
		want := 1 + strings.Count(val, "\n")
		if len(got) != want {
			t.Fatalf("value %q: expected %d lines, got %d", val, want, len(got))
		}
	}
}

func TestLineSpacing(t *testing.T) {
	e, _ := newEngine()
	v := TextVariable{Name: "body", X: 0, Y: 50, FontSize: 10, LineHeight: 1.5}
	got, err := e.Layout(v, Row{"body": "a\nb\nc"}, Size{Width: 500, Height: 400})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	for i, ins := range got {
		want := 400 - (50 + float64(i)*1.5*10) - 0.88*10
		if math.Abs(ins.Y-want) > eps {
			t.Fatalf("line %d y: got=%g want=%g", i, ins.Y, want)
		}
		if ins.Line != i {
			t.Fatalf("line index mismatch: got=%d want=%d", ins.Line, i)
		}
	}

	// lineHeight 缺省为 1.2
	v.LineHeight = 0
	got, _ = e.Layout(v, Row{"body": "a\nb"}, Size{Width: 500, Height: 400})
	if diff := got[0].Y - got[1].Y; math.Abs(diff-12) > eps {
		t.Fatalf("default line height: got spacing %g want 12", diff)
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	e, _ := newEngine()
	v := TextVariable{
		Name: "body", X: 0, Y: 0, FontSize: 10,
		WrapText: true, WrapWidth: 40,
		Text: "the quick brown fox jumps over a lazy dog",
	}
	got, err := e.Layout(v, nil, Size{Width: 500, Height: 500})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(got))
	}
	for i, ins := range got {
		if ins.Width > 40+eps {
			t.Fatalf("line %d exceeds width: %q width=%g", i, ins.Text, ins.Width)
		}
	}
	// 行号跨折行连续递增
	for i, ins := range got {
		if ins.Line != i {
			t.Fatalf("expected continuous line index, got %d at %d", ins.Line, i)
		}
	}
}

func TestWrapSplitsLongWord(t *testing.T) {
	measure := func(s string) (float64, error) { return float64(utf8.RuneCountInString(s)), nil }
	got, err := WrapLine("ab abcdefghij cd", 4, measure)
	if err != nil {
		t.Fatalf("WrapLine error: %v", err)
	}
	want := []string{"ab", "abcd", "efgh", "ij", "cd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrap mismatch: got=%q want=%q", got, want)
	}

	// 单个字符本身超宽时仍独占一行
	got, _ = WrapLine("xyz", 0.5, measure)
	if strings.Join(got, "|") != "x|y|z" {
		t.Fatalf("unbreakable chars: got=%q", got)
	}

	got, _ = WrapLine("   ", 4, measure)
	if len(got) != 1 || got[0] != "" {
		t.Fatalf("blank line should produce one empty line, got %q", got)
	}
}

func TestNegativeWrapWidthDrawsFullLine(t *testing.T) {
	e, _ := newEngine()
	v := TextVariable{Name: "body", FontSize: 10, WrapText: true, WrapWidth: -5, Text: "a long line of text"}
	got, err := e.Layout(v, nil, Size{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "a long line of text" {
		t.Fatalf("expected the unwrapped line, got %+v", got)
	}
}

func TestResolveValue(t *testing.T) {
	v := TextVariable{Name: "Name", Text: "Sample"}
	cases := []struct {
		row  Row
		want string
	}{
		{Row{"Name": "Ada"}, "Ada"},
		{Row{"name": "Grace"}, "Grace"},
		{Row{"Name": ""}, "Sample"},
		{nil, "Sample"},
	}
	for _, tc := range cases {
		if got := ResolveValue(v, tc.row); got != tc.want {
			t.Errorf("ResolveValue(%v) = %q, want %q", tc.row, got, tc.want)
		}
	}
	v.UseSampleText = true
	if got := ResolveValue(v, Row{"Name": "Ada"}); got != "Sample" {
		t.Fatalf("UseSampleText should force sample, got %q", got)
	}
}

func TestArabicLineBaselineAndFauxBold(t *testing.T) {
	e, _ := newEngine()
	v := TextVariable{Name: "name", X: 100, Y: 100, FontSize: 20, FontWeight: "800", FontFamily: "Public Sans"}
	got, err := e.Layout(v, Row{"name": "سلام\nAda"}, Size{Width: 1000, Height: 700})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	ar, latin := got[0], got[1]
	if !ar.Arabic || ar.Font != ArabicKey {
		t.Fatalf("first line should be Arabic: %+v", ar)
	}
	if ar.Text == "سلام" {
		t.Fatalf("Arabic line should be shaped")
	}
	wantY := 700 - 100 - 0.88*20*0.85
	if math.Abs(ar.Y-wantY) > eps {
		t.Fatalf("arabic baseline: got=%g want=%g", ar.Y, wantY)
	}
	if len(ar.Offsets) != 2 || ar.Offsets[0] != 0.6 || ar.Offsets[1] != 1.1 {
		t.Fatalf("unexpected faux bold offsets: %v", ar.Offsets)
	}
	if latin.Arabic || len(latin.Offsets) != 0 {
		t.Fatalf("latin line must not be faux bolded: %+v", latin)
	}
	if latin.Font != (FontKey{Family: FamilyPublicSans, Weight: WeightExtraBold}) {
		t.Fatalf("latin line font: %+v", latin.Font)
	}
}

func TestShapingUsedForMeasurement(t *testing.T) {
	var seen []string
	ts := &stubTypesetter{advance: 1}
	e := &Engine{
		Typesetter: ts,
		Shaper: ShaperFunc(func(s string) string {
			seen = append(seen, s)
			return "<" + s + ">"
		}),
	}
	v := TextVariable{Name: "n", FontSize: 1, WrapText: true, WrapWidth: 100}
	got, err := e.Layout(v, Row{"n": "سلام عليكم"}, Size{Width: 500, Height: 500})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(seen) == 0 {
		t.Fatalf("shaper was never called")
	}
	if !strings.HasPrefix(got[0].Text, "<") {
		t.Fatalf("drawn text should be shaped: %q", got[0].Text)
	}
	if got[0].Width != float64(utf8.RuneCountInString(got[0].Text)) {
		t.Fatalf("width should be measured on shaped text: %g vs %q", got[0].Width, got[0].Text)
	}
}

func TestTypesetterErrorBubbles(t *testing.T) {
	e := &Engine{Typesetter: &stubTypesetter{fail: true}}
	_, err := e.Layout(TextVariable{Name: "n", FontSize: 10, Text: "x"}, nil, Size{Width: 10, Height: 10})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, err := (&Engine{}).Layout(TextVariable{Name: "n"}, nil, Size{}); err == nil {
		t.Fatalf("expected error for missing typesetter")
	}
}

func TestOrderByLayer(t *testing.T) {
	in := []TextVariable{
		{Name: "a"},
		{Name: "b", Layer: LayerBack},
		{Name: "c", Layer: LayerFront},
		{Name: "d", Layer: LayerBack},
	}
	got := OrderByLayer(in)
	var names []string
	for _, v := range got {
		names = append(names, v.Name)
	}
	if strings.Join(names, "") != "bdac" {
		t.Fatalf("unexpected order %v", names)
	}
	if in[0].Name != "a" || in[1].Name != "b" {
		t.Fatalf("input must not be modified")
	}
}

func TestValidateSet(t *testing.T) {
	ok := []TextVariable{
		{Name: "name", FontSize: 10},
		{Name: "Course_1", FontSize: 10, Layer: LayerBack, TextAlign: AlignRight},
		{Name: "tint", FontSize: 10, Color: "red"},
	}
	if err := ValidateSet(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := [][]TextVariable{
		{{Name: "has space", FontSize: 10}},
		{{Name: "", FontSize: 10}},
		{{Name: "x", FontSize: 0}},
		{{Name: "x", FontSize: 10, TextAlign: "justify"}},
		{{Name: "x", FontSize: 10, Layer: "middle"}},
		{{Name: "Name", FontSize: 10}, {Name: "name", FontSize: 10}},
	}
	for i, set := range bad {
		if err := ValidateSet(set); !errors.Is(err, ErrInvalidVariable) {
			t.Errorf("case %d: expected ErrInvalidVariable, got %v", i, err)
		}
	}
}

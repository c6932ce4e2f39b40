package binding

import (
	"reflect"
	"testing"
)

func TestLookupExactThenCaseInsensitive(t *testing.T) {
	row := map[string]string{"Name": "exact", " email ": "a@x.com"}

	if got, ok := Lookup(row, "Name"); !ok || got != "exact" {
		t.Fatalf("exact lookup: got=%q ok=%v", got, ok)
	}
	if got, ok := Lookup(row, "NAME"); !ok || got != "exact" {
		t.Fatalf("case-insensitive lookup: got=%q ok=%v", got, ok)
	}
	if got, ok := Lookup(row, "Email"); !ok || got != "a@x.com" {
		t.Fatalf("trimmed lookup: got=%q ok=%v", got, ok)
	}
	if _, ok := Lookup(row, "missing"); ok {
		t.Fatalf("missing key should not resolve")
	}
	if _, ok := Lookup(nil, "Name"); ok {
		t.Fatalf("nil row should not resolve")
	}
}

func TestInterpolate(t *testing.T) {
	row := map[string]string{"name": "Ada", "Course": "Math"}
	cases := []struct {
		in, want string
	}{
		{"Hello {name}", "Hello Ada"},
		{"{ NAME } - {course}", "Ada - Math"},
		{"Missing {nope}!", "Missing !"},
		{"no tokens", "no tokens"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, row); got != tc.want {
			t.Errorf("Interpolate(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestCompileExecuteReuse(t *testing.T) {
	tpl := Compile("{first}_{last}")
	if got := tpl.Execute(map[string]string{"first": "A", "last": "B"}); got != "A_B" {
		t.Fatalf("got %q", got)
	}
	if got := tpl.Execute(map[string]string{"first": "C"}); got != "C_" {
		t.Fatalf("got %q", got)
	}
	if tpl.Source() != "{first}_{last}" {
		t.Fatalf("source mismatch: %q", tpl.Source())
	}
}

func TestAutoMap(t *testing.T) {
	got := AutoMap([]string{"Full Name", " name ", "Email"}, []string{"NAME", "date"})
	want := []Mapping{
		{Variable: "NAME", Column: " name "},
		{Variable: "date", Column: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AutoMap mismatch: got=%+v want=%+v", got, want)
	}
}

func TestApplyMappings(t *testing.T) {
	records := []map[string]string{
		{"Student": "Ada", "Mail": "ada@x.com", "File": "ada-cert"},
		{"Student": "", "Mail": " ", "File": ""},
	}
	mappings := []Mapping{{Variable: "name", Column: "student", DefaultValue: "Guest"}}
	rows := ApplyMappings(records, mappings, MappingOptions{EmailColumn: "mail", FilenameColumn: "file"})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["name"] != "Ada" || rows[0][EmailKey] != "ada@x.com" || rows[0][FilenameKey] != "ada-cert" {
		t.Fatalf("first row mismatch: %+v", rows[0])
	}
	if rows[1]["name"] != "Guest" {
		t.Fatalf("default value not applied: %+v", rows[1])
	}
	if _, ok := rows[1][EmailKey]; ok {
		t.Fatalf("blank email should not set reserved key: %+v", rows[1])
	}
	if rows[0]["Student"] != "Ada" {
		t.Fatalf("original columns should be kept: %+v", rows[0])
	}
}

func TestUnmappedVariables(t *testing.T) {
	got := UnmappedVariables([]Mapping{
		{Variable: "name", Column: "Student"},
		{Variable: "date", Column: " "},
		{Variable: "course", DefaultValue: "Go 101"},
	})
	if !reflect.DeepEqual(got, []string{"date"}) {
		t.Fatalf("UnmappedVariables = %v", got)
	}
}

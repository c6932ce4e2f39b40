package dsl_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/NastasiaHalabi/CertificateGenerator/dsl"
)

func TestParseTemplateKeys(t *testing.T) {
	tpl, err := dsl.ParseString("Dear { Name }, your {course} certificate")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []string{"Name", "course"}
	if got := tpl.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys mismatch: got=%v want=%v", got, want)
	}
	if tpl.Literal() {
		t.Fatalf("template with placeholders reported as literal")
	}
}

func TestRenderReplacesPlaceholders(t *testing.T) {
	tpl, err := dsl.ParseString("Hi {name}!\nSee {missing}.")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	values := map[string]string{"name": "Ada"}
	got := tpl.Render(func(key string) string { return values[key] })
	if want := "Hi Ada!\nSee ."; got != want {
		t.Fatalf("render mismatch: got=%q want=%q", got, want)
	}
}

func TestStrayBracesAreLiteral(t *testing.T) {
	cases := map[string]string{
		"{}":         "{}",
		"a } b":      "a } b",
		"open { end": "open { end",
		"{x{y}":      "{x<y>",
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			tpl, err := dsl.ParseString(input)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			got := tpl.Render(func(key string) string { return "<" + key + ">" })
			if got != want {
				t.Fatalf("render mismatch: got=%q want=%q", got, want)
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	tpl, err := dsl.Parse(strings.NewReader("plain text"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !tpl.Literal() {
		t.Fatalf("expected literal template")
	}
	if got := tpl.Render(nil); got != "plain text" {
		t.Fatalf("render mismatch: got=%q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	tpl, err := dsl.ParseString("")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := tpl.Render(nil); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
}

package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	if got := RenderMarkdown("   ", 40); got != "" {
		t.Fatalf("blank input rendered as %q", got)
	}
	got := RenderMarkdown("ship the **release**", 40)
	if !strings.Contains(got, "release") || strings.Contains(got, "**") {
		t.Fatalf("rendered = %q", got)
	}
}

func TestSetMarkdownTheme(t *testing.T) {
	t.Cleanup(func() { SetMarkdownTheme("dark") })

	SetMarkdownTheme("LIGHT")
	if MarkdownStyle != "light" {
		t.Fatalf("style = %q", MarkdownStyle)
	}
	SetMarkdownTheme("default")
	if MarkdownStyle != "dark" {
		t.Fatalf("style = %q", MarkdownStyle)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Road Map", 20, "Road Map"},
		{"Road Map", 5, "Road…"},
		{"Road Map", 1, "…"},
		{"Road Map", 0, ""},
		{"añoñuevo", 4, "año…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "task", "tasks") != "1 task" || Plural(0, "task", "tasks") != "0 tasks" {
		t.Fatal("unexpected plural forms")
	}
}

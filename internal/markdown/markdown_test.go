package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{"empty", "", nil, []string{"<p>"}},
		{"paragraph", "hello", []string{"<p>hello</p>"}, nil},
		{"emphasis", "**bold** and *em*", []string{"<strong>bold</strong>", "<em>em</em>"}, nil},
		{"hard wrap", "line one\nline two", []string{"<br>"}, nil},
		{"autolink", "see https://example.com", []string{`href="https://example.com"`}, nil},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}, nil},
		{"raw html escaped", "<script>alert(1)</script>", nil, []string{"<script>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.in)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("output %q must not contain %q", got, bad)
				}
			}
		})
	}
}

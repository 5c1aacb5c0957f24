package snippet

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain first line", "buy milk\nbuy eggs\n", "buy milk"},
		{"skips leading blanks", "\n\n  \nactual content\n", "actual content"},
		{"strips heading marker", "## Meeting Notes\nbody\n", "Meeting Notes"},
		{"skips bare heading marker", "##\nreal line\n", "real line"},
		{"skips frontmatter", "---\ntitle: x\ntags: [a]\n---\nthe body\n", "the body"},
		{"strips ansi escapes", "\x1b[31mred text\x1b[0m\n", "red text"},
		{"collapses whitespace", "a\t\tb   c\n", "a b c"},
		{"empty content", "", ""},
		{"whitespace only", " \n\t\n", ""},
		{"truncates long lines", strings.Repeat("x", 300), strings.Repeat("x", MaxLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract([]byte(tt.in)); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Package snippet extracts a one-line display excerpt from note content.
package snippet

import (
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
)

var spaceRe = regexp.MustCompile(`\s{2,}|\t+`)

// MaxLen bounds the extracted snippet; list rows truncate anyway, this just
// keeps the catalog from holding whole note bodies.
const MaxLen = 120

// Extract returns the first non-empty line of data, with ANSI escapes
// stripped, Markdown heading markers and frontmatter fences skipped, and
// whitespace collapsed. Returns "" for empty or whitespace-only content.
func Extract(data []byte) string {
	inFrontmatter := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(stripansi.Strip(line))
		if line == "---" {
			inFrontmatter = !inFrontmatter
			continue
		}
		if inFrontmatter || line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			continue
		}
		line = spaceRe.ReplaceAllString(line, " ")
		if len(line) > MaxLen {
			line = line[:MaxLen]
		}
		return line
	}
	return ""
}

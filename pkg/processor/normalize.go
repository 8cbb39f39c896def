package processor

import (
	"regexp"
	"strings"
)

// maxLineOccurrences caps how often an identical line may appear. Two keeps
// headings that legitimately repeat (table of contents and body) while
// dropping extraction loops.
const maxLineOccurrences = 2

// pageArtifact matches page numbering and footer runs left by PDF extraction:
// four or more digits, an optional ordinal marker, then the rest of the line.
var pageArtifact = regexp.MustCompile(`\d{4,}º?[^\n]*`)

// Normalize cleans one document's extracted text. It is idempotent.
func Normalize(raw string) string {
	text := pageArtifact.ReplaceAllString(raw, "")

	counts := make(map[string]int)
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		counts[line]++
		if counts[line] > maxLineOccurrences {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

package processor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the per-document character budget.
const DefaultMaxChars = 4000

// sectionHeader recognizes "12. Some Title:" and "**Some Title**".
var sectionHeader = regexp.MustCompile(`\d+\.\s+[\p{L}\p{N}_\s]+:|\*\*[\p{L}\p{N}_\s]+\*\*`)

// FitToBudget trims text to at most maxChars runes while keeping section
// headers attached to their bodies. Text already within budget is returned
// unchanged.
//
// The opening prose is kept up to half the budget. Header/body pairs are then
// appended whole, in order, until the first pair that would not fit; that pair
// and everything after it is dropped.
func FitToBudget(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	segments := splitSections(text)

	var b strings.Builder
	lead := truncateRunes(segments[0], maxChars/2)
	b.WriteString(lead)
	total := utf8.RuneCountInString(lead)

	for i := 1; i+1 < len(segments); i += 2 {
		header, body := segments[i], segments[i+1]
		n := utf8.RuneCountInString(header) + utf8.RuneCountInString(body)
		if total+n >= maxChars {
			break
		}
		b.WriteString(header)
		b.WriteString(body)
		total += n
	}

	return b.String()
}

// splitSections returns prose, header, body, header, body, ... so headers sit
// at odd indices. The result always has an odd length.
func splitSections(text string) []string {
	matches := sectionHeader.FindAllStringIndex(text, -1)
	segments := make([]string, 0, 2*len(matches)+1)

	prev := 0
	for _, m := range matches {
		segments = append(segments, text[prev:m[0]], text[m[0]:m[1]])
		prev = m[1]
	}
	return append(segments, text[prev:])
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

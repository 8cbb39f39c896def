// Package sanitizer turns a raw model completion into the answer shown to
// the user.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// Label prefixes every final answer.
	Label = "**Resposta:** "
	// NotFound replaces answers that are empty or too short to be useful.
	NotFound = "Não encontrei informações específicas sobre isso nos documentos carregados."

	// MinChars is the shortest cleaned answer that is kept.
	MinChars = 10
	// DefaultMaxChars matches the length limit the prompt asks the model to respect.
	DefaultMaxChars = 1000
)

var (
	boldAnswer  = regexp.MustCompile(`(?s)\*\*Resposta:\*\*\s*(.*?)(?:\*\*|\z)`)
	plainAnswer = regexp.MustCompile(`(?s)Resposta:\s*(.*?)(?:Pergunta:|\z)`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Sanitizer cleans completions. MaxChars caps the cleaned answer; a negative
// value disables the cap and zero means DefaultMaxChars.
type Sanitizer struct {
	MaxChars int
}

// Sanitize cleans raw with the default length cap.
func Sanitize(raw string) string {
	return Sanitizer{}.Sanitize(raw)
}

// Final prepends the answer label to sanitized content.
func Final(content string) string {
	return Label + content
}

// Sanitize extracts the answer payload, removes repeated lines and enforces
// the length cap. It never fails: unusable input yields NotFound.
func (s Sanitizer) Sanitize(raw string) string {
	content := dedupLines(extract(raw))
	if utf8.RuneCountInString(content) < MinChars {
		return NotFound
	}

	max := s.MaxChars
	if max == 0 {
		max = DefaultMaxChars
	}
	if max > 0 {
		content = capLines(content, max)
	}
	return content
}

func extract(raw string) string {
	if m := boldAnswer.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := plainAnswer.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// dedupLines collapses whitespace in each line and drops blank lines and any
// line already emitted.
func dedupLines(text string) string {
	seen := make(map[string]struct{})
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// capLines keeps whole lines while they fit in max runes. A first line that
// is longer than max on its own is cut at a rune boundary.
func capLines(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	lines := strings.Split(text, "\n")
	total := 0
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if i > 0 {
			n++ // newline
		}
		if total+n > max {
			if i == 0 {
				return string([]rune(line)[:max])
			}
			return strings.Join(lines[:i], "\n")
		}
		total += n
	}
	return text
}

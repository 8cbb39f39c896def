// Package extractor pulls plain text out of PDF payloads.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyPDF is returned for a zero-length payload.
var ErrEmptyPDF = errors.New("empty PDF content")

// tagPattern matches a complete tag on a single line. A '<' that does not
// open a tag name, or is never closed, is kept as text.
var tagPattern = regexp.MustCompile(`</?[A-Za-z][^<>\n]*>`)

// PDF extracts text page by page using github.com/ledongthuc/pdf.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

// Extract returns the cleaned text of every page, one page per block,
// separated by newlines. A page without extractable text contributes an
// empty line. Malformed input yields an error, including inputs that make
// the reader panic.
func (e *PDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyPDF
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(i)
		if !page.V.IsNull() {
			pageText, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("read page %d: %w", i, err)
			}
			b.WriteString(CleanPage(pageText))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// CleanPage strips complete tags left in extracted page text and collapses
// runs of horizontal whitespace. Line breaks are kept so later stages can work
// per line. Entities are left as they are.
func CleanPage(text string) string {
	text = tagPattern.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

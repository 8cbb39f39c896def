package sanitizer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_Extraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bold label up to next bold marker",
			raw:  "preamble **Resposta:** Segundo o manual.pdf, pressione o botão.\n**Fonte:** ignored",
			want: "Segundo o manual.pdf, pressione o botão.",
		},
		{
			name: "bold label to end of string",
			raw:  "**Resposta:**   Connect the cable first.  ",
			want: "Connect the cable first.",
		},
		{
			name: "plain label up to next question",
			raw:  "Resposta: Hold the power button for 3 seconds.\nPergunta: and then?",
			want: "Hold the power button for 3 seconds.",
		},
		{
			name: "no label uses whole completion",
			raw:  "\n  The warranty lasts two years (warranty.pdf).  \n",
			want: "The warranty lasts two years (warranty.pdf).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitize_EmptyFallback(t *testing.T) {
	for _, raw := range []string{"", "   \n   ", "**Resposta:**", "Resposta:\nPergunta: x", "ok"} {
		assert.Equal(t, NotFound, Sanitize(raw), "raw %q", raw)
	}
}

func TestSanitize_StrictDedup(t *testing.T) {
	got := Sanitize("**Resposta:** Alpha.\nAlpha.\n  Alpha.  \nBeta.\nAlpha.")

	assert.Equal(t, "Alpha.\nBeta.", got)
	assert.Equal(t, 1, strings.Count(got, "Alpha."))
	assert.Less(t, strings.Index(got, "Alpha."), strings.Index(got, "Beta."))
}

func TestSanitize_WhitespaceCollapsedBeforeDedup(t *testing.T) {
	got := Sanitize("Press   the\tbutton.\nPress the button.\n\n\nWait for the LED.")
	assert.Equal(t, "Press the button.\nWait for the LED.", got)
}

func TestSanitize_LengthCap(t *testing.T) {
	line := strings.Repeat("x", 300)
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, string(rune('a'+i))+line)
	}
	raw := strings.Join(lines, "\n")

	got := Sanitize(raw)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultMaxChars)
	assert.Equal(t, strings.Join(lines[:3], "\n"), got, "only whole lines are kept")

	long := strings.Repeat("ç", 1500)
	assert.Equal(t, strings.Repeat("ç", DefaultMaxChars), Sanitize(long))

	assert.Equal(t, raw, Sanitizer{MaxChars: -1}.Sanitize(raw))
	assert.Equal(t, lines[0], Sanitizer{MaxChars: 400}.Sanitize(raw))
}

func TestSanitize_Total(t *testing.T) {
	inputs := []string{
		"**", "****", "**Resposta:****", "Resposta:", "Pergunta:", "\x00\xff",
		strings.Repeat("**Resposta:** a\n", 100),
	}
	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			got := Sanitize(raw)
			assert.NotEmpty(t, got)
		})
	}
}

func TestFinal(t *testing.T) {
	assert.Equal(t, "**Resposta:** content here", Final("content here"))
}

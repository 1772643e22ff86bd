package views

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// sanitizeForTerminal removes codepoints that break tcell's cell width
// accounting: skin tone modifiers, the zero width joiner and variation
// selectors. A modified thumbs-up becomes a plain 2-cell thumbs-up.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// oneLine flattens s to a single sanitized line of at most width cells,
// cutting on grapheme boundaries.
func oneLine(s string, width int) string {
	s = sanitizeForTerminal(strings.Join(strings.Fields(s), " "))
	if width <= 0 || uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	b.WriteString("…")
	return b.String()
}

package enrich

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

var (
	urlPattern     = regexp.MustCompile(`https?://[A-Za-z0-9][A-Za-z0-9\-._~:/?#\[\]@!$&'()*+,;=%]*`)
	mentionPattern = regexp.MustCompile(`@[a-zA-Z0-9._-]+(?:@[a-z.]+)?`)
)

// CharacterCount returns the number of Unicode code points in content.
func CharacterCount(content string) int {
	return utf8.RuneCountInString(content)
}

// WordCount returns the number of whitespace-delimited tokens in content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ExtractURLs returns every http(s) URL in content, in order of appearance.
// Repeated URLs are kept.
func ExtractURLs(content string) []string {
	return urlPattern.FindAllString(content, -1)
}

// ExtractMentions returns @handles in content, in order of appearance.
func ExtractMentions(content string) []string {
	var out []string
	for _, loc := range mentionPattern.FindAllStringIndex(content, -1) {
		// Skip the domain half of e-mail addresses.
		if loc[0] > 0 {
			r, _ := utf8.DecodeLastRuneInString(content[:loc[0]])
			if r != ' ' && r != '\n' && r != '\t' && r != '(' {
				continue
			}
		}
		out = append(out, content[loc[0]:loc[1]])
	}
	return out
}

// Preview flattens content to a single line and truncates it to max
// grapheme clusters, appending "..." when truncated.
func Preview(content string, max int) string {
	flat := strings.Join(strings.Fields(content), " ")
	if max <= 0 || uniseg.GraphemeClusterCount(flat) <= max {
		return flat
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(flat)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	return strings.TrimRight(b.String(), " ") + "..."
}

// ValidReaction reports whether emoji can be sent as a reaction. The empty
// string removes a reaction and is valid.
func ValidReaction(emoji string) bool {
	if emoji == "" {
		return true
	}
	return uniseg.GraphemeClusterCount(emoji) == 1 && gomoji.ContainsEmoji(emoji)
}

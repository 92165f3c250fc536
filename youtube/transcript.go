package youtube

import (
	"strings"

	"ewintr.nl/ytsum/model"
)

// ToText joins snippet texts with the separator, preserving snippet
// order. No further normalization.
func ToText(snippets []model.TranscriptSnippet, separator string) string {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		texts = append(texts, s.Text)
	}

	return strings.Join(texts, separator)
}

package youtube

import (
	"regexp"
	"strconv"
	"strings"

	"ewintr.nl/ytsum/model"
)

// Two timedtext dialects exist on the wire and neither can be assumed
// away. The newer one carries <p t="ms" d="ms"> elements with optional
// word-level <s> children, the legacy one <text start="s" dur="s">
// lines. Detection is content sniffing, there is no version negotiation.
var (
	newDialectRe = regexp.MustCompile(`(?s)<p t="(\d+)" d="(\d+)"[^>]*>(.*?)</p>`)
	wordRe       = regexp.MustCompile(`<s[^>]*>([^<]*)</s>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	legacyRe     = regexp.MustCompile(`(?s)<text start="([^"]*)" dur="([^"]*)"[^>]*>(.*?)</text>`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"\n", " ",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// ParseTimedText decodes a raw caption payload of either dialect into
// snippets, preserving document order. Snippets whose text is empty
// after decoding are dropped.
func ParseTimedText(payload string) ([]model.TranscriptSnippet, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, model.NewError(model.KindEmptyCaptionPayload, "empty caption payload")
	}

	if strings.Contains(payload, `format="3"`) || strings.Contains(payload, "<p t=") {
		return parseNewDialect(payload), nil
	}

	return parseLegacyDialect(payload), nil
}

// parseNewDialect reads millisecond timings. Text comes from nested
// word elements when present (word boundaries are baked into the source
// text), otherwise from the stripped inner content.
func parseNewDialect(payload string) []model.TranscriptSnippet {
	var snippets []model.TranscriptSnippet
	for _, m := range newDialectRe.FindAllStringSubmatch(payload, -1) {
		startMs, _ := strconv.Atoi(m[1])
		durationMs, _ := strconv.Atoi(m[2])
		inner := m[3]

		var text string
		if words := wordRe.FindAllStringSubmatch(inner, -1); len(words) > 0 {
			var sb strings.Builder
			for _, w := range words {
				sb.WriteString(w[1])
			}
			text = decodeEntities(strings.TrimSpace(sb.String()))
		} else {
			text = decodeEntities(strings.TrimSpace(tagRe.ReplaceAllString(inner, "")))
		}
		if text == "" {
			continue
		}

		snippets = append(snippets, model.TranscriptSnippet{
			Text:     text,
			Start:    float64(startMs) / 1000,
			Duration: float64(durationMs) / 1000,
		})
	}

	return snippets
}

// parseLegacyDialect reads fractional-second timings and decodes
// entities in the line text.
func parseLegacyDialect(payload string) []model.TranscriptSnippet {
	var snippets []model.TranscriptSnippet
	for _, m := range legacyRe.FindAllStringSubmatch(payload, -1) {
		start, _ := strconv.ParseFloat(m[1], 64)
		duration, _ := strconv.ParseFloat(m[2], 64)
		text := decodeEntities(m[3])
		if strings.TrimSpace(text) == "" {
			continue
		}

		snippets = append(snippets, model.TranscriptSnippet{
			Text:     text,
			Start:    start,
			Duration: duration,
		})
	}

	return snippets
}

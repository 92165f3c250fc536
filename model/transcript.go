package model

// TranscriptSnippet is one timed line of transcript text. Snippets keep
// the order they had in the source caption stream, which the upstream
// does not promise to be monotonic.
type TranscriptSnippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionTrack is one language/kind variant of subtitle data offered by
// the video host. Tracks are transient per fetch and never persisted.
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string
}

// Generated reports whether the track was machine generated ("asr").
func (t CaptionTrack) Generated() bool {
	return t.Kind == "asr"
}

type LanguageInfo struct {
	LanguageCode   string `json:"language_code"`
	Language       string `json:"language"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

package youtube

import "regexp"

var (
	videoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

	// Ordered: standard watch URL and short link and embed URL first,
	// then watch URLs with extra query parameters before v.
	videoURLRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	}
)

// ExtractVideoID resolves a raw URL or id string to an 11-character
// video id. Input that matches no known shape is returned unchanged and
// left for the upstream lookup to reject.
func ExtractVideoID(raw string) string {
	if videoIDRe.MatchString(raw) {
		return raw
	}
	for _, re := range videoURLRes {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}

	return raw
}

package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ewintr.nl/ytsum/metrics"
	"ewintr.nl/ytsum/model"
)

// playerResponseMarker precedes the player response JSON embedded in
// watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

// watchPageTracks scrapes the public watch page with a browser identity
// and reads the caption tracks from the embedded player response. Used
// when the innertube endpoint lists no tracks.
func (c *Client) watchPageTracks(ctx context.Context, videoID string) (trackList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	metrics.IncrWatchPageCalls()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.watchURL+videoID, nil)
	if err != nil {
		return trackList{}, err
	}
	req.Header.Set("User-Agent", webUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return trackList{}, upstreamError(err, "fetch watch page: %v")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return trackList{}, model.NewErrorf(model.KindCaptionFetchFailed, "fetch watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return trackList{}, upstreamError(err, "read watch page: %v")
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return trackList{}, model.NewError(model.KindCaptionFetchFailed, "player response not found in watch page")
	}
	raw := extractJSON(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return trackList{}, model.NewError(model.KindCaptionFetchFailed, "malformed player response in watch page")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return trackList{}, model.NewErrorf(model.KindCaptionFetchFailed, "decode watch page player response: %v", err)
	}

	return tracksOf(player), nil
}

// extractJSON returns the first balanced JSON object at the start of b,
// respecting string literals and escapes.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
	}

	return nil
}

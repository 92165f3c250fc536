package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ewintr.nl/ytsum/metrics"
	"ewintr.nl/ytsum/model"
)

// TranscriptCache holds parsed transcripts between requests. A nil cache
// disables caching.
type TranscriptCache interface {
	Get(ctx context.Context, videoID, language string) ([]model.TranscriptSnippet, bool)
	Set(ctx context.Context, videoID, language string, snippets []model.TranscriptSnippet)
}

// Client fetches caption tracks and transcripts from YouTube. There is
// no stable public API for this, so it tries an ordered list of
// strategies: the machine-readable innertube /player endpoint first,
// then scraping the public watch page. Strategies share one narrow
// result shape so new ones can be added without touching callers.
type Client struct {
	http    *http.Client
	cache   TranscriptCache
	logger  *slog.Logger
	timeout time.Duration

	playerURL string
	watchURL  string
}

func NewClient(httpClient *http.Client, cache TranscriptCache, logger *slog.Logger) *Client {
	return &Client{
		http:      httpClient,
		cache:     cache,
		logger:    logger,
		timeout:   15 * time.Second,
		playerURL: "https://www.youtube.com/youtubei/v1/player",
		watchURL:  "https://www.youtube.com/watch?v=",
	}
}

// trackList is the shared result shape of all listing strategies.
// Translatability is a property of the whole list, not a single track.
type trackList struct {
	tracks       []model.CaptionTrack
	translatable bool
}

// ListTracks returns the available caption tracks for a video and
// whether machine translation is offered for them. Zero tracks is a
// valid outcome, not an error.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]model.CaptionTrack, bool, error) {
	strategies := []func(context.Context, string) (trackList, error){
		c.playerTracks,
		c.watchPageTracks,
	}

	var list trackList
	for _, strategy := range strategies {
		var err error
		list, err = strategy(ctx, videoID)
		if err != nil {
			return nil, false, err
		}
		if len(list.tracks) > 0 {
			break
		}
	}

	return list.tracks, list.translatable, nil
}

// SelectTrack picks the track for a requested language: exact language
// code match, otherwise the first track in list order. A fixed fallback,
// not a best match.
func SelectTrack(tracks []model.CaptionTrack, language string) model.CaptionTrack {
	for _, t := range tracks {
		if t.LanguageCode == language {
			return t
		}
	}

	return tracks[0]
}

// FetchCaptions downloads the raw timedtext payload for a track.
func (c *Client) FetchCaptions(ctx context.Context, track model.CaptionTrack) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	metrics.IncrCaptionFetches()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return "", model.NewErrorf(model.KindCaptionFetchFailed, "failed to fetch captions: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", upstreamError(err, "failed to fetch captions: %v")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.NewErrorf(model.KindCaptionFetchFailed, "failed to fetch captions: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", upstreamError(err, "failed to read captions: %v")
	}

	return string(body), nil
}

// Transcript runs the full caption pipeline for one video: list tracks,
// select one for the language, fetch and parse.
func (c *Client) Transcript(ctx context.Context, videoID, language string) ([]model.TranscriptSnippet, error) {
	metrics.IncrTranscriptRequests()
	if c.cache != nil {
		if snippets, ok := c.cache.Get(ctx, videoID, language); ok {
			return snippets, nil
		}
	}

	tracks, _, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, model.NewErrorf(model.KindNoCaptionsAvailable, "no transcript found for video: %s", videoID)
	}

	raw, err := c.FetchCaptions(ctx, SelectTrack(tracks, language))
	if err != nil {
		return nil, err
	}
	snippets, err := ParseTimedText(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, videoID, language, snippets)
	}

	return snippets, nil
}

// AvailableLanguages returns the language view over the track list. A
// video without captions yields an empty list.
func (c *Client) AvailableLanguages(ctx context.Context, videoID string) ([]model.LanguageInfo, error) {
	tracks, translatable, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	infos := make([]model.LanguageInfo, 0, len(tracks))
	for _, track := range tracks {
		name := track.Name
		if name == "" {
			name = track.LanguageCode
		}
		infos = append(infos, model.LanguageInfo{
			LanguageCode:   track.LanguageCode,
			Language:       name,
			IsGenerated:    track.Generated(),
			IsTranslatable: translatable,
		})
	}

	return infos, nil
}

// playerTracks asks the innertube /player endpoint with a fixed
// android client identity. Works without browser credentials.
func (c *Client) playerTracks(ctx context.Context, videoID string) (trackList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	metrics.IncrPlayerCalls()
	payload, err := json.Marshal(innertubeRequest{
		Context: innertubeContext{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     innertubeClientVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
			},
		},
		VideoID: videoID,
	})
	if err != nil {
		return trackList{}, err
	}

	url := c.playerURL + "?key=" + innertubeKey + "&prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return trackList{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return trackList{}, upstreamError(err, "innertube player request failed: %v")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return trackList{}, model.NewErrorf(model.KindCaptionFetchFailed, "innertube player: HTTP %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return trackList{}, model.NewErrorf(model.KindCaptionFetchFailed, "decode player response: %v", err)
	}
	if player.PlayabilityStatus != nil && player.PlayabilityStatus.Status == "ERROR" {
		return trackList{}, model.NewErrorf(model.KindVideoUnavailable,
			"video is unavailable: %s. The video may be private, deleted, or not exist.", videoID)
	}

	return tracksOf(player), nil
}

func tracksOf(player playerResponse) trackList {
	if player.Captions == nil {
		return trackList{}
	}
	renderer := player.Captions.PlayerCaptionsTracklistRenderer

	var list trackList
	for _, t := range renderer.CaptionTracks {
		name := ""
		if t.Name != nil {
			name = t.Name.SimpleText
		}
		list.tracks = append(list.tracks, model.CaptionTrack{
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Name:         name,
			Kind:         t.Kind,
		})
	}
	list.translatable = len(renderer.TranslationLanguages) > 0

	return list
}

// upstreamError distinguishes deadline expiry from other transport
// failures so timeouts stay visible in the metrics.
func upstreamError(err error, format string) *model.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.IncrUpstreamTimeouts()
		return model.NewErrorf(model.KindUpstreamTimeout, format, fmt.Errorf("timeout: %w", err))
	}

	return model.NewErrorf(model.KindCaptionFetchFailed, format, err)
}

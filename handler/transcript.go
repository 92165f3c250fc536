package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ewintr.nl/ytsum/jobs"
	"ewintr.nl/ytsum/model"
	"ewintr.nl/ytsum/youtube"
)

type TranscriptSource interface {
	Transcript(ctx context.Context, videoID, language string) ([]model.TranscriptSnippet, error)
	AvailableLanguages(ctx context.Context, videoID string) ([]model.LanguageInfo, error)
}

type SummaryGenerator interface {
	Summarize(ctx context.Context, text string, maxWords int) (string, int, error)
}

type TranscriptAPI struct {
	source     TranscriptSource
	summarizer SummaryGenerator
	logger     *slog.Logger
}

func NewTranscriptAPI(source TranscriptSource, summarizer SummaryGenerator, logger *slog.Logger) *TranscriptAPI {
	return &TranscriptAPI{
		source:     source,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (t *TranscriptAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", fmt.Errorf("method %s was not registered in the transcript api", r.Method))
		return
	}

	ref, op := splitRef(r)
	if ref == "" {
		Error(w, http.StatusBadRequest, "bad request", model.NewError(model.KindInvalidReference, "missing video reference"))
		return
	}
	videoID := youtube.ExtractVideoID(ref)

	switch op {
	case "":
		t.Snippets(w, r, videoID)
	case "text":
		t.Text(w, r, videoID)
	case "languages":
		t.Languages(w, r, videoID)
	case "summary":
		t.Summary(w, r, videoID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("%s was not registered in the transcript api", op))
	}
}

func (t *TranscriptAPI) Snippets(w http.ResponseWriter, r *http.Request, videoID string) {
	snippets, err := t.source.Transcript(r.Context(), videoID, languageParam(r))
	if err != nil {
		t.returnErr(w, "could not fetch transcript", err)
		return
	}

	JSON(w, http.StatusOK, struct {
		VideoID    string                    `json:"video_id"`
		Transcript []model.TranscriptSnippet `json:"transcript"`
		Success    bool                      `json:"success"`
		Message    string                    `json:"message"`
	}{
		VideoID:    videoID,
		Transcript: snippets,
		Success:    true,
		Message:    "Transcript retrieved successfully",
	})
}

func (t *TranscriptAPI) Text(w http.ResponseWriter, r *http.Request, videoID string) {
	snippets, err := t.source.Transcript(r.Context(), videoID, languageParam(r))
	if err != nil {
		t.returnErr(w, "could not fetch transcript", err)
		return
	}

	separator := r.URL.Query().Get("separator")
	if separator == "" {
		separator = " "
	}

	JSON(w, http.StatusOK, struct {
		VideoID string `json:"video_id"`
		Text    string `json:"text"`
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		VideoID: videoID,
		Text:    youtube.ToText(snippets, separator),
		Success: true,
		Message: "Transcript retrieved successfully",
	})
}

func (t *TranscriptAPI) Languages(w http.ResponseWriter, r *http.Request, videoID string) {
	languages, err := t.source.AvailableLanguages(r.Context(), videoID)
	if err != nil {
		t.returnErr(w, "could not list languages", err)
		return
	}

	JSON(w, http.StatusOK, struct {
		VideoID            string               `json:"video_id"`
		AvailableLanguages []model.LanguageInfo `json:"available_languages"`
		Success            bool                 `json:"success"`
	}{
		VideoID:            videoID,
		AvailableLanguages: languages,
		Success:            true,
	})
}

func (t *TranscriptAPI) Summary(w http.ResponseWriter, r *http.Request, videoID string) {
	length := 300
	if param := r.URL.Query().Get("length"); param != "" {
		var err error
		if length, err = strconv.Atoi(param); err != nil {
			Error(w, http.StatusBadRequest, "bad request", model.NewErrorf(model.KindValidationFailed, "length is not a number: %s", param))
			return
		}
	}
	if length < jobs.MinLength || length > jobs.MaxLength {
		Error(w, http.StatusBadRequest, "bad request", model.NewErrorf(model.KindValidationFailed,
			"length must be between %d and %d words", jobs.MinLength, jobs.MaxLength))
		return
	}

	snippets, err := t.source.Transcript(r.Context(), videoID, languageParam(r))
	if err != nil {
		t.returnErr(w, "could not fetch transcript", err)
		return
	}

	summary, wordCount, err := t.summarizer.Summarize(r.Context(), youtube.ToText(snippets, " "), length)
	if err != nil {
		t.returnErr(w, "could not generate summary", err)
		return
	}

	JSON(w, http.StatusOK, struct {
		VideoID         string `json:"video_id"`
		Summary         string `json:"summary"`
		WordCount       int    `json:"word_count"`
		RequestedLength int    `json:"requested_length"`
		Success         bool   `json:"success"`
		Message         string `json:"message"`
	}{
		VideoID:         videoID,
		Summary:         summary,
		WordCount:       wordCount,
		RequestedLength: length,
		Success:         true,
		Message:         "Summary generated successfully",
	})
}

func (t *TranscriptAPI) returnErr(w http.ResponseWriter, message string, err error) {
	t.logger.Error(message, slog.String("err", err.Error()))
	Error(w, errStatus(err), message, err)
}

// splitRef takes the video reference and the trailing operation from the
// path. The reference can itself be a url with slashes, so only known
// operation names are split off the end. A reference that was a watch
// url gets its query string back, routing strips it into r.URL.RawQuery.
func splitRef(r *http.Request) (string, string) {
	p := strings.TrimPrefix(r.URL.Path, "/")

	op := ""
	for _, known := range []string{"text", "languages", "summary"} {
		if rest, found := strings.CutSuffix(p, "/"+known); found {
			p, op = rest, known
			break
		}
	}

	if strings.Contains(p, "://") && strings.Contains(r.URL.RawQuery, "v=") {
		p += "?" + r.URL.RawQuery
	}

	return p, op
}

func languageParam(r *http.Request) string {
	param := r.URL.Query().Get("language")
	if param == "" {
		param = r.URL.Query().Get("languages")
	}
	language, _, _ := strings.Cut(param, ",")
	if language == "" {
		return "en"
	}

	return language
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ewintr.nl/ytsum/model"
)

func TestTranscriptAPISnippets(t *testing.T) {
	source := &fakeSource{snippets: []model.TranscriptSnippet{
		{Text: "hello", Start: 0, Duration: 1.5},
		{Text: "world", Start: 1.5, Duration: 1.0},
	}}
	server := testServer(source, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var got struct {
		VideoID    string                    `json:"video_id"`
		Transcript []model.TranscriptSnippet `json:"transcript"`
		Success    bool                      `json:"success"`
		Message    string                    `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v, body: %s", err, w.Body.String())
	}
	if got.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("video_id = %q, want dQw4w9WgXcQ", got.VideoID)
	}
	if len(got.Transcript) != 2 || got.Transcript[0].Text != "hello" {
		t.Errorf("transcript = %+v", got.Transcript)
	}
	if !got.Success || got.Message == "" {
		t.Errorf("success = %t, message = %q, want true and non-empty", got.Success, got.Message)
	}
}

func TestTranscriptAPIText(t *testing.T) {
	source := &fakeSource{snippets: []model.TranscriptSnippet{
		{Text: "hello"}, {Text: "world"},
	}}
	server := testServer(source, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})

	var got struct {
		VideoID string `json:"video_id"`
		Text    string `json:"text"`
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/text", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.VideoID != "dQw4w9WgXcQ" || got.Text != "hello world" || !got.Success {
		t.Errorf("body = %+v", got)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/text?separator=%0A", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Text != "hello\nworld" {
		t.Errorf("text = %q, want newline separated", got.Text)
	}
}

func TestTranscriptAPILanguages(t *testing.T) {
	source := &fakeSource{languages: []model.LanguageInfo{
		{LanguageCode: "en", Language: "English", IsTranslatable: true},
	}}
	server := testServer(source, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/languages", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got struct {
		VideoID            string               `json:"video_id"`
		AvailableLanguages []model.LanguageInfo `json:"available_languages"`
		Success            bool                 `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v, body: %s", err, w.Body.String())
	}
	if got.VideoID != "dQw4w9WgXcQ" || !got.Success {
		t.Errorf("video_id = %q, success = %t", got.VideoID, got.Success)
	}
	if len(got.AvailableLanguages) != 1 || got.AvailableLanguages[0].LanguageCode != "en" {
		t.Errorf("available_languages = %+v", got.AvailableLanguages)
	}
}

func TestTranscriptAPISummary(t *testing.T) {
	source := &fakeSource{snippets: []model.TranscriptSnippet{{Text: "hello"}}}
	generator := &fakeGenerator{summary: "a short summary"}
	server := testServer(source, generator, &fakeManager{}, &fakeAuth{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/summary?length=100", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var got struct {
		VideoID         string `json:"video_id"`
		Summary         string `json:"summary"`
		WordCount       int    `json:"word_count"`
		RequestedLength int    `json:"requested_length"`
		Success         bool   `json:"success"`
		Message         string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.VideoID != "dQw4w9WgXcQ" || got.Summary != "a short summary" || got.WordCount != 3 {
		t.Errorf("body = %+v", got)
	}
	if got.RequestedLength != 100 {
		t.Errorf("requested_length = %d, want 100", got.RequestedLength)
	}
	if !got.Success || got.Message == "" {
		t.Errorf("success = %t, message = %q, want true and non-empty", got.Success, got.Message)
	}
}

func TestTranscriptAPISummaryValidation(t *testing.T) {
	server := testServer(&fakeSource{}, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})

	tests := []struct {
		query      string
		wantStatus int
	}{
		{"length=49", http.StatusBadRequest},
		{"length=1001", http.StatusBadRequest},
		{"length=abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ/summary?"+tt.query, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestTranscriptAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no captions", model.NewError(model.KindNoCaptionsAvailable, "no transcript found"), http.StatusNotFound},
		{"unavailable", model.NewError(model.KindVideoUnavailable, "video is unavailable"), http.StatusNotFound},
		{"fetch failed", model.NewError(model.KindCaptionFetchFailed, "HTTP 403"), http.StatusInternalServerError},
		{"timeout", model.NewError(model.KindUpstreamTimeout, "timeout"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testServer(&fakeSource{err: tt.err}, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcript/dQw4w9WgXcQ", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestTranscriptAPIMethodNotAllowed(t *testing.T) {
	server := testServer(&fakeSource{}, &fakeGenerator{}, &fakeManager{}, &fakeAuth{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transcript/dQw4w9WgXcQ", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ewintr.nl/ytsum/model"
)

func Index(w http.ResponseWriter) {
	Message(w, http.StatusOK, "ytsum index", map[string]string{
		"GET /transcript/{videoIdOrUrl}":           "transcript snippets with timestamps",
		"GET /transcript/{videoIdOrUrl}/text":      "transcript as plain text",
		"GET /transcript/{videoIdOrUrl}/languages": "available caption languages",
		"GET /transcript/{videoIdOrUrl}/summary":   "on-demand summary",
		"POST /summaries":                          "submit a summarization job",
		"GET /summaries":                           "list your jobs",
		"GET /summaries/{id}":                      "job snapshot",
		"GET /health":                              "liveness",
		"GET /metrics":                             "operational counters",
	})
}

func Message(w http.ResponseWriter, status int, message string, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "details":%q}`, message, marshalErr.Error())
		return
	}
	fmt.Fprint(w, string(body))
}

func Error(w http.ResponseWriter, status int, message string, err error, details ...any) {
	w.WriteHeader(status)
	response := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details []any  `json:"details,omitempty"`
	}{
		Message: message,
		Error:   err.Error(),
		Details: details,
	}
	body, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		fmt.Fprintf(w, `{"message": %q, "error": %q, "details":%q}`, message, err.Error(), marshalErr.Error())
		return
	}

	fmt.Fprint(w, string(body))
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}
	w.WriteHeader(status)
	fmt.Fprint(w, string(body))
}

// statusForKind is the single place where failure kinds become HTTP
// statuses. Kinds outside the map fall back to 500.
var statusForKind = map[model.Kind]int{
	model.KindInvalidReference:    http.StatusBadRequest,
	model.KindValidationFailed:    http.StatusBadRequest,
	model.KindAuthFailed:          http.StatusUnauthorized,
	model.KindUnauthorized:        http.StatusUnauthorized,
	model.KindVideoUnavailable:    http.StatusNotFound,
	model.KindNoCaptionsAvailable: http.StatusNotFound,
	model.KindNotFound:            http.StatusNotFound,
	model.KindInputTooLarge:       http.StatusRequestEntityTooLarge,
	model.KindUpstreamRateLimited: http.StatusTooManyRequests,
	model.KindRequestRateLimited:  http.StatusTooManyRequests,
	model.KindUpstreamUnavailable: http.StatusServiceUnavailable,
	model.KindUpstreamTimeout:     http.StatusServiceUnavailable,
	model.KindCaptionFetchFailed:  http.StatusInternalServerError,
	model.KindEmptyCaptionPayload: http.StatusInternalServerError,
	model.KindServiceUnconfigured: http.StatusInternalServerError,
	model.KindEmptyGeneration:     http.StatusInternalServerError,
	model.KindGenerationFailed:    http.StatusInternalServerError,
}

func errStatus(err error) int {
	if status, ok := statusForKind[model.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

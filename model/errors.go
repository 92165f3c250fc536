package model

import (
	"errors"
	"fmt"
)

// Kind is a closed set of failure classes. Pipeline code returns kinds,
// the transport layer owns the mapping to HTTP statuses.
type Kind string

const (
	KindInvalidReference    Kind = "invalid_reference"
	KindVideoUnavailable    Kind = "video_unavailable"
	KindNoCaptionsAvailable Kind = "no_captions_available"
	KindCaptionFetchFailed  Kind = "caption_fetch_failed"
	KindEmptyCaptionPayload Kind = "empty_caption_payload"
	KindServiceUnconfigured Kind = "service_unconfigured"
	KindInputTooLarge       Kind = "input_too_large"
	KindAuthFailed          Kind = "auth_failed"
	KindUpstreamRateLimited Kind = "upstream_rate_limited"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUpstreamTimeout     Kind = "upstream_timeout"
	KindEmptyGeneration     Kind = "empty_generation"
	KindGenerationFailed    Kind = "generation_failed"
	KindRequestRateLimited  Kind = "request_rate_limited"
	KindValidationFailed    Kind = "validation_failed"
	KindUnauthorized        Kind = "unauthorized"
	KindNotFound            Kind = "not_found"
)

// Error carries a failure kind and a human-readable detail. The detail
// is what callers see, the kind is what code branches on.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func NewErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or "" for errors outside the
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

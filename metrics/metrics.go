package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Operational counters, exposed as plain text on /metrics.
var counters struct {
	TranscriptRequests atomic.Int64
	PlayerCalls        atomic.Int64
	WatchPageCalls     atomic.Int64
	CaptionFetches     atomic.Int64
	UpstreamTimeouts   atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
	SummaryCalls       atomic.Int64
	SummaryErrors      atomic.Int64
	JobsSubmitted      atomic.Int64
	JobsCompleted      atomic.Int64
	JobsFailed         atomic.Int64
}

func IncrTranscriptRequests() { counters.TranscriptRequests.Add(1) }
func IncrPlayerCalls()        { counters.PlayerCalls.Add(1) }
func IncrWatchPageCalls()     { counters.WatchPageCalls.Add(1) }
func IncrCaptionFetches()     { counters.CaptionFetches.Add(1) }
func IncrUpstreamTimeouts()   { counters.UpstreamTimeouts.Add(1) }
func IncrCacheHits()          { counters.CacheHits.Add(1) }
func IncrCacheMisses()        { counters.CacheMisses.Add(1) }
func IncrSummaryCalls()       { counters.SummaryCalls.Add(1) }
func IncrSummaryErrors()      { counters.SummaryErrors.Add(1) }
func IncrJobsSubmitted()      { counters.JobsSubmitted.Add(1) }
func IncrJobsCompleted()      { counters.JobsCompleted.Add(1) }
func IncrJobsFailed()         { counters.JobsFailed.Add(1) }

// Snapshot returns the current counter values.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"transcript_requests": counters.TranscriptRequests.Load(),
		"player_calls":        counters.PlayerCalls.Load(),
		"watch_page_calls":    counters.WatchPageCalls.Load(),
		"caption_fetches":     counters.CaptionFetches.Load(),
		"upstream_timeouts":   counters.UpstreamTimeouts.Load(),
		"cache_hits":          counters.CacheHits.Load(),
		"cache_misses":        counters.CacheMisses.Load(),
		"summary_calls":       counters.SummaryCalls.Load(),
		"summary_errors":      counters.SummaryErrors.Load(),
		"jobs_submitted":      counters.JobsSubmitted.Load(),
		"jobs_completed":      counters.JobsCompleted.Load(),
		"jobs_failed":         counters.JobsFailed.Load(),
	}
}

// Format renders the counters in a fixed order for the HTTP endpoint.
func Format() string {
	m := Snapshot()
	keys := []string{
		"transcript_requests", "player_calls", "watch_page_calls",
		"caption_fetches", "upstream_timeouts",
		"cache_hits", "cache_misses",
		"summary_calls", "summary_errors",
		"jobs_submitted", "jobs_completed", "jobs_failed",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}

	return sb.String()
}

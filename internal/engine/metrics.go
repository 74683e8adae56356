package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	ScrapeFallbacks    atomic.Int64
	CaptionListCalls   atomic.Int64
	CommentPages       atomic.Int64
	ClassifyBatches    atomic.Int64
	SkippedBatches     atomic.Int64
	FactChecks         atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	RouterRejected     atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"transcript_requests", "scrape_fallbacks", "caption_list_calls",
	"comment_pages", "classify_batches", "skipped_batches",
	"fact_checks", "llm_calls", "llm_errors",
	"router_rejected",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"scrape_fallbacks":    metrics.ScrapeFallbacks.Load(),
		"caption_list_calls":  metrics.CaptionListCalls.Load(),
		"comment_pages":       metrics.CommentPages.Load(),
		"classify_batches":    metrics.ClassifyBatches.Load(),
		"skipped_batches":     metrics.SkippedBatches.Load(),
		"fact_checks":         metrics.FactChecks.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"router_rejected":     metrics.RouterRejected.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrTranscript()     { metrics.TranscriptRequests.Add(1) }
func IncrScrapeFallback() { metrics.ScrapeFallbacks.Add(1) }
func IncrCaptionList()    { metrics.CaptionListCalls.Add(1) }
func IncrCommentPage()    { metrics.CommentPages.Add(1) }
func IncrClassifyBatch()  { metrics.ClassifyBatches.Add(1) }
func IncrSkippedBatch()   { metrics.SkippedBatches.Add(1) }
func IncrFactCheck()      { metrics.FactChecks.Add(1) }
func IncrRouterRejected() { metrics.RouterRejected.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 10*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

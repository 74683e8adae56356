package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
	"github.com/anatolykoptev/go_ytlens/internal/engine/sources"
)

const (
	// BatchSize is the number of comments sent per classifier request.
	BatchSize = 10
	// DefaultMaxComments caps how many comments are fetched when the caller passes ≤ 0.
	DefaultMaxComments = 50
	// SampleLimit caps the labeled sample returned with the counts.
	SampleLimit = 20

	sampleTextRunes = 200
	promptTextRunes = 1000
)

// Sentiment is one of positive, negative, neutral.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// ParseSentiment maps classifier output onto a Sentiment; anything
// unrecognised is neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case Positive:
		return Positive
	case Negative:
		return Negative
	}
	return Neutral
}

// SentimentCounts tallies labels across analyzed comments.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (c *SentimentCounts) add(s Sentiment) {
	switch s {
	case Positive:
		c.Positive++
	case Negative:
		c.Negative++
	default:
		c.Neutral++
	}
}

// AnalyzedComment is a comment with its label.
type AnalyzedComment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
}

// CommentAnalysis is the aggregate result. TotalFetched and TotalAnalyzed
// diverge when batches are skipped or classifier ids fail to match.
type CommentAnalysis struct {
	VideoID        string            `json:"video_id"`
	TotalFetched   int               `json:"total_fetched"`
	TotalAnalyzed  int               `json:"total_analyzed"`
	Sentiment      SentimentCounts   `json:"sentiment"`
	Sample         []AnalyzedComment `json:"sample"`
	SkippedBatches int               `json:"skipped_batches"`
}

// StatusFunc receives progress messages; nil is allowed.
type StatusFunc func(message string)

func (f StatusFunc) emit(format string, args ...any) {
	if f != nil {
		f(fmt.Sprintf(format, args...))
	}
}

// CommentAnalyzer fetches comments and classifies them in batches.
type CommentAnalyzer struct {
	limiter *rate.Limiter
}

// NewCommentAnalyzer paces classifier calls at engine.Cfg.ClassifyRPS
// (≤ 0 disables pacing).
func NewCommentAnalyzer() *CommentAnalyzer {
	limit := rate.Limit(engine.Cfg.ClassifyRPS)
	if engine.Cfg.ClassifyRPS <= 0 {
		limit = rate.Inf
	}
	return &CommentAnalyzer{limiter: rate.NewLimiter(limit, 1)}
}

// AnalyzeComments runs a one-off analyzer with the current config.
func AnalyzeComments(ctx context.Context, creds engine.Credentials, videoID string, maxResults int, status StatusFunc) (CommentAnalysis, error) {
	return NewCommentAnalyzer().Analyze(ctx, creds, videoID, maxResults, status)
}

// Analyze fetches up to maxResults comments and classifies them BatchSize at a
// time. A failed classifier call drops its batch; an unparseable reply labels
// the whole batch neutral.
func (a *CommentAnalyzer) Analyze(ctx context.Context, creds engine.Credentials, videoID string, maxResults int, status StatusFunc) (CommentAnalysis, error) {
	out := CommentAnalysis{VideoID: videoID, Sample: []AnalyzedComment{}}
	if !creds.HasGemini() {
		return out, engine.ErrGeminiKeyNotSet
	}
	if !creds.HasYouTube() {
		return out, engine.ErrYouTubeKeyNotSet
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxComments
	}

	status.emit("Fetching up to %d comments...", maxResults)
	comments, err := sources.FetchComments(ctx, strings.TrimSpace(creds.YouTubeAPIKey), videoID, maxResults)
	if err != nil {
		return out, fmt.Errorf("fetch comments: %w", err)
	}
	out.TotalFetched = len(comments)
	if len(comments) == 0 {
		return out, nil
	}

	batches := (len(comments) + BatchSize - 1) / BatchSize
	geminiKey := strings.TrimSpace(creds.GeminiAPIKey)
	for b := 0; b < batches; b++ {
		batch := comments[b*BatchSize : min((b+1)*BatchSize, len(comments))]
		status.emit("Analyzing sentiment, batch %d of %d...", b+1, batches)

		if err := a.limiter.Wait(ctx); err != nil {
			return out, err
		}
		labeled, err := classifyBatch(ctx, geminiKey, batch)
		if err != nil {
			engine.IncrSkippedBatch()
			out.SkippedBatches++
			slog.Warn("comments: classifier batch failed, skipping",
				slog.String("id", videoID), slog.Int("batch", b+1), slog.Int("size", len(batch)), slog.Any("error", err))
			continue
		}
		for _, c := range labeled {
			out.TotalAnalyzed++
			out.Sentiment.add(c.Sentiment)
			if len(out.Sample) < SampleLimit {
				c.Text = engine.TruncateRunes(c.Text, sampleTextRunes, "…")
				out.Sample = append(out.Sample, c)
			}
		}
	}
	return out, nil
}

type batchItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// classifyBatch returns the labeled subset of batch in batch order. The error
// is non-nil only when the classifier call itself failed.
func classifyBatch(ctx context.Context, apiKey string, batch []sources.Comment) ([]AnalyzedComment, error) {
	engine.IncrClassifyBatch()

	items := make([]batchItem, len(batch))
	for i, c := range batch {
		items[i] = batchItem{ID: c.ID, Text: engine.TruncateRunes(c.Text, promptTextRunes, "…")}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	resp, err := engine.Generate(ctx, apiKey, engine.GenerateRequest{
		Model:      engine.Cfg.GeminiFastModel,
		Prompt:     fmt.Sprintf(engine.SentimentBatchPrompt, payload),
		JSONOutput: true,
	})
	if err != nil && !errors.Is(err, engine.ErrMalformedResponse) {
		return nil, err
	}

	entries, ok := parseSentimentEntries(resp)
	if !ok {
		slog.Warn("comments: unparseable classifier reply, labeling batch neutral", slog.Int("size", len(batch)))
		all := make([]AnalyzedComment, len(batch))
		for i, c := range batch {
			all[i] = AnalyzedComment{ID: c.ID, Text: c.Text, Sentiment: Neutral}
		}
		return all, nil
	}
	return correlate(batch, entries), nil
}

// sentimentEntry is one classifier verdict.
type sentimentEntry struct {
	ID        flexID `json:"id"`
	Sentiment string `json:"sentiment"`
}

// flexID accepts ids the model echoes back as numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// parseSentimentEntries decodes the reply as a JSON array, preferring the text
// part and falling back to already-structured content.
func parseSentimentEntries(resp *engine.GenerateResponse) ([]sentimentEntry, bool) {
	if resp == nil {
		return nil, false
	}
	var entries []sentimentEntry
	if text := strings.TrimSpace(resp.Text()); text != "" {
		if err := json.Unmarshal([]byte(engine.StripFences(text)), &entries); err != nil {
			return nil, false
		}
		return entries, true
	}
	if raw := resp.Content(); len(raw) > 0 && json.Unmarshal(raw, &entries) == nil {
		return entries, true
	}
	return nil, false
}

// correlate matches entries to batch members by exact id. Unmatched and
// repeated ids are dropped.
func correlate(batch []sources.Comment, entries []sentimentEntry) []AnalyzedComment {
	labels := make(map[string]Sentiment, len(entries))
	for _, e := range entries {
		id := string(e.ID)
		if _, dup := labels[id]; !dup {
			labels[id] = ParseSentiment(e.Sentiment)
		}
	}
	out := make([]AnalyzedComment, 0, len(batch))
	for _, c := range batch {
		if s, ok := labels[c.ID]; ok {
			out = append(out, AnalyzedComment{ID: c.ID, Text: c.Text, Sentiment: s})
		}
	}
	return out
}

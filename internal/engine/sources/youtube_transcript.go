package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
	"github.com/anatolykoptev/go_ytlens/internal/toolutil"
)

// YouTube transcript fetching.
// Primary:  watch page → ytInitialPlayerResponse → timedtext XML  (full text)
// Fallback: Data API captions.list                                (metadata only)

// ErrTranscriptUnavailable wraps the final stage's error when every strategy failed.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// TranscriptKind tags what a TranscriptResult carries.
type TranscriptKind string

const (
	TranscriptText     TranscriptKind = "text"
	TranscriptMetadata TranscriptKind = "metadata"
)

// TranscriptResult is either the transcript text or, when only the Data API
// answered, the list of caption tracks that exist.
type TranscriptResult struct {
	Kind     TranscriptKind `json:"kind"`
	VideoID  string         `json:"video_id"`
	Language string         `json:"language,omitempty"` // "en" or "en (auto)"; text results only
	Text     string         `json:"text,omitempty"`
	Tracks   []CaptionInfo  `json:"tracks,omitempty"` // metadata results only
	Strategy string         `json:"strategy"`
}

// Summary renders the human-readable message for a metadata result.
func (r TranscriptResult) Summary() string {
	if r.Kind == TranscriptText {
		return fmt.Sprintf("Transcript (%s), %d lines", r.Language, strings.Count(r.Text, "\n")+1)
	}
	langs := make([]string, len(r.Tracks))
	for i, t := range r.Tracks {
		langs[i] = t.String()
	}
	return "Transcript text is not available from the API; available caption languages: " + strings.Join(langs, ", ")
}

type outcomeKind int

const (
	outcomeText outcomeKind = iota
	outcomeMetadata
	outcomeTryNext
	outcomeFatal
)

// outcome is what a single strategy reports back to the chain.
type outcome struct {
	kind   outcomeKind
	result TranscriptResult
	err    error
}

func tryNext(err error) outcome { return outcome{kind: outcomeTryNext, err: err} }
func fatal(err error) outcome   { return outcome{kind: outcomeFatal, err: err} }

type transcriptRequest struct {
	creds   engine.Credentials
	videoID string
	langs   []string
}

type transcriptStrategy struct {
	name string
	run  func(ctx context.Context, req transcriptRequest) outcome
}

// TranscriptFetcher runs the ordered strategy chain.
type TranscriptFetcher struct {
	Locator TrackLocator // nil = PlayerResponseLocator
}

// FetchTranscript fetches with the default locator.
func FetchTranscript(ctx context.Context, creds engine.Credentials, videoID string, langs []string) (TranscriptResult, error) {
	return (&TranscriptFetcher{}).Fetch(ctx, creds, videoID, langs)
}

// Fetch evaluates page_scrape then captions_api. Text results are cached per
// video and language preference.
func (f *TranscriptFetcher) Fetch(ctx context.Context, creds engine.Credentials, videoID string, langs []string) (TranscriptResult, error) {
	engine.IncrTranscript()
	langs = engine.NormLangs(langs)

	cacheKey := engine.CacheKey("transcript", videoID, strings.Join(langs, ","))
	if cached, ok := toolutil.CacheLoadJSON[TranscriptResult](ctx, cacheKey); ok {
		return cached, nil
	}

	res, err := runChain(ctx, f.strategies(), transcriptRequest{creds: creds, videoID: videoID, langs: langs})
	if err != nil {
		return TranscriptResult{}, err
	}
	if res.Kind == TranscriptText {
		toolutil.CacheStoreJSON(ctx, cacheKey, res)
	}
	return res, nil
}

func (f *TranscriptFetcher) strategies() []transcriptStrategy {
	loc := f.Locator
	if loc == nil {
		loc = PlayerResponseLocator{}
	}
	return []transcriptStrategy{
		{name: "page_scrape", run: func(ctx context.Context, req transcriptRequest) outcome {
			return scrapeTranscript(ctx, loc, req)
		}},
		{name: "captions_api", run: captionsMetadata},
	}
}

// runChain evaluates strategies in order until one succeeds or one is fatal.
// A TryNext from the last strategy is terminal as well.
func runChain(ctx context.Context, strategies []transcriptStrategy, req transcriptRequest) (TranscriptResult, error) {
	var lastErr error
	for i, s := range strategies {
		o := s.run(ctx, req)
		switch o.kind {
		case outcomeText, outcomeMetadata:
			o.result.Strategy = s.name
			o.result.VideoID = req.videoID
			return o.result, nil
		case outcomeFatal:
			return TranscriptResult{}, fmt.Errorf("%w: %s: %w", ErrTranscriptUnavailable, s.name, o.err)
		}
		lastErr = fmt.Errorf("%s: %w", s.name, o.err)
		if i < len(strategies)-1 {
			engine.IncrScrapeFallback()
			slog.Warn("youtube: transcript strategy failed, trying next",
				slog.String("id", req.videoID), slog.String("strategy", s.name), slog.Any("err", o.err))
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no strategies configured")
	}
	return TranscriptResult{}, fmt.Errorf("%w: %w", ErrTranscriptUnavailable, lastErr)
}

// scrapeTranscript is the page_scrape strategy. Every failure is TryNext.
func scrapeTranscript(ctx context.Context, loc TrackLocator, req transcriptRequest) outcome {
	markup, err := engine.FetchPage(ctx, watchURL(req.videoID))
	if err != nil {
		return tryNext(fmt.Errorf("watch page: %w", err))
	}
	tracks, err := loc.LocateTracks(markup)
	if err != nil {
		return tryNext(err)
	}
	track := PickTrack(tracks, req.langs)

	text, err := fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return tryNext(err)
	}
	return outcome{kind: outcomeText, result: TranscriptResult{
		Kind:     TranscriptText,
		Language: track.Tag(),
		Text:     text,
	}}
}

// captionsMetadata is the captions_api strategy. It never yields text.
func captionsMetadata(ctx context.Context, req transcriptRequest) outcome {
	if !req.creds.HasYouTube() {
		return fatal(engine.ErrYouTubeKeyNotSet)
	}
	infos, err := ListCaptions(ctx, strings.TrimSpace(req.creds.YouTubeAPIKey), req.videoID)
	if err != nil {
		return fatal(err)
	}
	return outcome{kind: outcomeMetadata, result: TranscriptResult{
		Kind:   TranscriptMetadata,
		Tracks: infos,
	}}
}

// PickTrack selects a caption track per preference rank. Within one language a
// human track beats an asr one; an earlier-ranked language beats a later one
// regardless of kind. With no match the first track wins. tracks must be non-empty.
func PickTrack(tracks []CaptionTrack, langs []string) CaptionTrack {
	for _, lang := range langs {
		var auto *CaptionTrack
		for i := range tracks {
			if !strings.EqualFold(tracks[i].LanguageCode, lang) {
				continue
			}
			if !tracks[i].IsASR() {
				return tracks[i]
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto
		}
	}
	return tracks[0]
}

var timedTextEntryRE = regexp.MustCompile(`(?s)<text\b[^>]*>(.*?)</text>`)

// ParseTimedText extracts one trimmed line per <text> entry, joined by "\n".
func ParseTimedText(body []byte) string {
	matches := timedTextEntryRE.FindAllSubmatch(body, -1)
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		line := strings.TrimSpace(engine.DecodeEntities(engine.StripTags(string(m[1]))))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// fetchTimedText fetches and parses a timedtext caption URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("caption track has no baseUrl")
	}
	headers := map[string]string{"User-Agent": engine.RandomUserAgent()}
	body, _, err := engine.GetBody(ctx, baseURL, headers, 2<<20)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	text := ParseTimedText(body)
	if text == "" {
		return "", errors.New("empty transcript")
	}
	return text, nil
}

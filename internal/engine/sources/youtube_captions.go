package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// ErrNoCaptions is returned when captions.list reports zero tracks.
var ErrNoCaptions = errors.New("no captions found")

// CaptionInfo is one language/kind pair reported by captions.list.
type CaptionInfo struct {
	Language string `json:"language"`
	Kind     string `json:"kind"` // standard, asr, forced
}

// String renders "en" for standard tracks and "en (auto)" for asr ones.
func (c CaptionInfo) String() string {
	switch c.Kind {
	case "", "standard":
		return c.Language
	case "asr":
		return c.Language + " (auto)"
	}
	return c.Language + " (" + c.Kind + ")"
}

// ListCaptions calls captions.list for a video. The Data API only exposes
// track metadata to non-owners, never the caption text itself.
func ListCaptions(ctx context.Context, apiKey, videoID string) ([]CaptionInfo, error) {
	if apiKey == "" {
		return nil, engine.ErrYouTubeKeyNotSet
	}
	engine.IncrCaptionList()

	svc, err := dataAPI(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("captions.list: %w", engine.FromGoogleAPI(err))
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoCaptions
	}

	out := make([]CaptionInfo, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it == nil || it.Snippet == nil {
			continue
		}
		out = append(out, CaptionInfo{Language: it.Snippet.Language, Kind: it.Snippet.TrackKind})
	}
	if len(out) == 0 {
		return nil, ErrNoCaptions
	}
	return out, nil
}

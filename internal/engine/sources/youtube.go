package sources

// YouTube implementation is split across files by responsibility:
//   youtube_videoid.go    watch-page URL → video id
//   youtube_watch.go      watch page markup → caption tracks (TrackLocator)
//   youtube_transcript.go transcript strategy chain, track selection, timedtext parsing
//   youtube_captions.go   Data API v3 captions.list (metadata-only fallback)
//   youtube_comments.go   Data API v3 commentThreads.list pagination

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// watchURL returns the watch page URL for a video id on the configured host.
func watchURL(videoID string) string {
	return engine.Cfg.YouTubeWatchBase + "/watch?v=" + url.QueryEscape(videoID)
}

// dataAPI builds a Data API v3 client for one operation. The key rides on the
// transport because option.WithHTTPClient disables option.WithAPIKey.
func dataAPI(ctx context.Context, apiKey string) (*youtube.Service, error) {
	base := engine.Cfg.HTTPClient
	client := &http.Client{
		Transport: &transport.APIKey{Key: apiKey, Transport: base.Transport},
		Timeout:   base.Timeout,
	}
	svc, err := youtube.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(engine.Cfg.YouTubeAPIBase+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	return svc, nil
}

package sources

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// commentPageMax is the Data API's per-page ceiling for commentThreads.list.
const commentPageMax = 100

// Comment is a top-level comment; ID is unique per video.
type Comment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FetchComments pages through commentThreads.list until the token runs out or
// limit comments are collected. A failure on the first page is returned; a later
// page failure keeps what was already fetched.
func FetchComments(ctx context.Context, apiKey, videoID string, limit int) ([]Comment, error) {
	if apiKey == "" {
		return nil, engine.ErrYouTubeKeyNotSet
	}
	if limit <= 0 {
		return nil, nil
	}

	svc, err := dataAPI(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	var out []Comment
	pageToken := ""
	for page := 0; len(out) < limit; page++ {
		items, next, err := fetchCommentPage(ctx, svc, videoID, min(limit-len(out), commentPageMax), pageToken)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			slog.Warn("comments: page failed, keeping partial result",
				slog.String("id", videoID), slog.Int("page", page), slog.Int("fetched", len(out)), slog.Any("error", err))
			break
		}
		out = append(out, items...)
		if next == "" || len(items) == 0 {
			break
		}
		pageToken = next
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func fetchCommentPage(ctx context.Context, svc *youtube.Service, videoID string, pageSize int, pageToken string) ([]Comment, string, error) {
	engine.IncrCommentPage()

	call := svc.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(int64(pageSize)).
		TextFormat("plainText").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("commentThreads.list: %w", engine.FromGoogleAPI(err))
	}

	items := make([]Comment, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it == nil || it.Snippet == nil || it.Snippet.TopLevelComment == nil || it.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		items = append(items, Comment{ID: it.Id, Text: it.Snippet.TopLevelComment.Snippet.TextOriginal})
	}
	return items, resp.NextPageToken, nil
}

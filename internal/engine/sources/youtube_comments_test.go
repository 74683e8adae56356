package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// commentServer serves total comments in pages; failFrom > 0 makes that page
// and later ones return 403.
func commentServer(t *testing.T, total, failFrom int) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := int(calls.Add(1))
		q := r.URL.Query()
		assert.Equal(t, "/youtube/v3/commentThreads", r.URL.Path)
		assert.Equal(t, "yt", q.Get("key"))
		assert.Equal(t, "vid", q.Get("videoId"))
		assert.Equal(t, "plainText", q.Get("textFormat"))
		assert.Equal(t, "snippet", q.Get("part"))
		if failFrom > 0 && page >= failFrom {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"message":"The video has disabled comments."}}`)
			return
		}
		size, _ := strconv.Atoi(q.Get("maxResults"))
		assert.LessOrEqual(t, size, 100)
		start := 0
		if tok := q.Get("pageToken"); tok != "" {
			start, _ = strconv.Atoi(tok)
		}
		end := min(start+size, total)
		fmt.Fprint(w, `{"items":[`)
		for i := start; i < end; i++ {
			if i > start {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":"c%d","snippet":{"topLevelComment":{"snippet":{"textOriginal":"comment %d"}}}}`, i, i)
		}
		next := ""
		if end < total {
			next = strconv.Itoa(end)
		}
		fmt.Fprintf(w, `],"nextPageToken":%q}`, next)
	}))
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{YouTubeAPIBase: srv.URL})
	t.Cleanup(func() { engine.Init(engine.Config{}) })
	return &calls
}

func TestFetchComments_Pages(t *testing.T) {
	calls := commentServer(t, 250, 0)
	got, err := FetchComments(context.Background(), "yt", "vid", 230)
	require.NoError(t, err)
	assert.Len(t, got, 230)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, Comment{ID: "c0", Text: "comment 0"}, got[0])
	assert.Equal(t, "c229", got[229].ID)
}

func TestFetchComments_TokenRunsOut(t *testing.T) {
	commentServer(t, 7, 0)
	got, err := FetchComments(context.Background(), "yt", "vid", 50)
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestFetchComments_ZeroIsValid(t *testing.T) {
	commentServer(t, 0, 0)
	got, err := FetchComments(context.Background(), "yt", "vid", 50)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchComments_FirstPageError(t *testing.T) {
	commentServer(t, 10, 1)
	_, err := FetchComments(context.Background(), "yt", "vid", 50)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, engine.StatusCode(err))
	assert.Contains(t, err.Error(), "disabled comments")
}

func TestFetchComments_LaterPageKeepsPartial(t *testing.T) {
	commentServer(t, 300, 2)
	got, err := FetchComments(context.Background(), "yt", "vid", 300)
	require.NoError(t, err)
	assert.Len(t, got, 100)
}

func TestFetchComments_NoKey(t *testing.T) {
	_, err := FetchComments(context.Background(), "", "vid", 5)
	assert.ErrorIs(t, err, engine.ErrYouTubeKeyNotSet)
}

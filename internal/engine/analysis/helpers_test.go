package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

type promptItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// fakeAPI serves commentThreads under /yt and generateContent under /gemini.
// reply receives the batch number (from 1) and the comments in the prompt and
// returns the HTTP status and candidate text.
type fakeAPI struct {
	comments []string
	reply    func(batch int, items []promptItem) (int, string)

	mu      sync.Mutex
	batches int
	prompts []string
}

func (f *fakeAPI) start(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/yt/youtube/v3/commentThreads":
			items := make([]string, len(f.comments))
			for i, c := range f.comments {
				items[i] = fmt.Sprintf(`{"id":"c%d","snippet":{"topLevelComment":{"snippet":{"textOriginal":%q}}}}`, i+1, c)
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		case strings.HasPrefix(r.URL.Path, "/gemini/models/"):
			var req struct {
				Contents []struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"contents"`
			}
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &req)
			prompt := req.Contents[0].Parts[0].Text

			f.mu.Lock()
			f.batches++
			n := f.batches
			f.prompts = append(f.prompts, prompt)
			f.mu.Unlock()

			var items []promptItem
			if i := strings.LastIndex(prompt, "Comments:\n"); i >= 0 {
				_ = json.Unmarshal([]byte(prompt[i+len("Comments:\n"):]), &items)
			}
			status, text := f.reply(n, items)
			w.WriteHeader(status)
			if status != http.StatusOK {
				fmt.Fprint(w, text)
				return
			}
			b, _ := json.Marshal(map[string]any{
				"candidates": []any{map[string]any{"content": map[string]any{
					"role": "model", "parts": []any{map[string]string{"text": text}},
				}}},
			})
			w.Write(b)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{YouTubeAPIBase: srv.URL + "/yt", GeminiAPIBase: srv.URL + "/gemini"})
	t.Cleanup(func() { engine.Init(engine.Config{}) })
}

// labelByWord labels comments containing "love" positive and "hate" negative.
func labelByWord(_ int, items []promptItem) (int, string) {
	out := make([]map[string]string, len(items))
	for i, it := range items {
		s := "neutral"
		switch {
		case strings.Contains(it.Text, "love"):
			s = "positive"
		case strings.Contains(it.Text, "hate"):
			s = "negative"
		}
		out[i] = map[string]string{"id": it.ID, "sentiment": s}
	}
	b, _ := json.Marshal(out)
	return http.StatusOK, string(b)
}

var bothKeys = engine.Credentials{YouTubeAPIKey: "yt", GeminiAPIKey: "g"}

func jsonUnmarshal(s string, v any) error { return json.Unmarshal([]byte(s), v) }

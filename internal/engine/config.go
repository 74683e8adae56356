package engine

import (
	"net/http"
	"strings"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIBase       string // Data API service root, e.g. https://youtube.googleapis.com
	YouTubeWatchBase     string // watch page root, e.g. https://www.youtube.com
	GeminiAPIBase        string // e.g. https://generativelanguage.googleapis.com/v1beta
	GeminiFastModel      string // throughput model (comment sentiment)
	GeminiReasoningModel string // reasoning model (fact check)
	TranscriptLangs      []string
	FetchTimeout         time.Duration
	ClassifyRPS          float64
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = watch page fetched with HTTPClient + Chrome headers
}

// Defaults used when a Config field is left empty.
const (
	DefaultYouTubeAPIBase       = "https://youtube.googleapis.com"
	DefaultYouTubeWatchBase     = "https://www.youtube.com"
	DefaultGeminiAPIBase        = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiFastModel      = "gemini-2.0-flash"
	DefaultGeminiReasoningModel = "gemini-2.5-pro"
)

// DefaultLanguages is the transcript language preference order.
var DefaultLanguages = []string{"en", "ta"}

var cfg = withDefaults(Config{})

// Cfg exposes the engine configuration for sub-packages (sources, analysis).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = withDefaults(c)
	Cfg = &cfg
}

func withDefaults(c Config) Config {
	if c.YouTubeAPIBase == "" {
		c.YouTubeAPIBase = DefaultYouTubeAPIBase
	}
	if c.YouTubeWatchBase == "" {
		c.YouTubeWatchBase = DefaultYouTubeWatchBase
	}
	if c.GeminiAPIBase == "" {
		c.GeminiAPIBase = DefaultGeminiAPIBase
	}
	c.YouTubeAPIBase = strings.TrimRight(c.YouTubeAPIBase, "/")
	c.YouTubeWatchBase = strings.TrimRight(c.YouTubeWatchBase, "/")
	c.GeminiAPIBase = strings.TrimRight(c.GeminiAPIBase, "/")
	if c.GeminiFastModel == "" {
		c.GeminiFastModel = DefaultGeminiFastModel
	}
	if c.GeminiReasoningModel == "" {
		c.GeminiReasoningModel = DefaultGeminiReasoningModel
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = DefaultLanguages
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	return c
}

// Credentials is the per-operation key snapshot handed to every network-calling
// component. The router refreshes it from the key store before each dispatch.
type Credentials struct {
	YouTubeAPIKey string `json:"youtube_api_key,omitempty"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
}

// HasYouTube reports whether a non-blank platform key is present.
func (c Credentials) HasYouTube() bool { return strings.TrimSpace(c.YouTubeAPIKey) != "" }

// HasGemini reports whether a non-blank generative-language key is present.
func (c Credentials) HasGemini() bool { return strings.TrimSpace(c.GeminiAPIKey) != "" }

// go_ytlens: YouTube transcript, comment sentiment and fact-check MCP server.
//
// Exposes five MCP tools: get_transcript, analyze_comments, fact_check,
// set_api_keys, api_key_status. Runs as HTTP MCP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
	"github.com/anatolykoptev/go_ytlens/internal/keystore"
	"github.com/anatolykoptev/go_ytlens/internal/lensserver"
	"github.com/anatolykoptev/go_ytlens/internal/router"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	keys, err := keystore.Open(env.Str("KEYSTORE_PATH", ""))
	if err != nil {
		slog.Error("key store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer keys.Close()

	seed := engine.Credentials{
		YouTubeAPIKey: env.Str("YOUTUBE_API_KEY", ""),
		GeminiAPIKey:  env.Str("GEMINI_API_KEY", ""),
	}
	if err := keys.Seed(context.Background(), seed); err != nil {
		slog.Warn("key store seeding failed", slog.Any("error", err))
	}
	slog.Info("key store ready", slog.String("path", keys.Path()))

	slog.Info("starting go_ytlens",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytlens",
		Version: version,
	}, nil)

	lensserver.RegisterTools(server, router.New(keys), keys)
	slog.Info("tools registered", slog.Int("count", lensserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytlens",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIBase:       env.Str("YOUTUBE_API_BASE", engine.DefaultYouTubeAPIBase),
		YouTubeWatchBase:     env.Str("YOUTUBE_WATCH_BASE", engine.DefaultYouTubeWatchBase),
		GeminiAPIBase:        env.Str("GEMINI_API_BASE", engine.DefaultGeminiAPIBase),
		GeminiFastModel:      env.Str("GEMINI_FAST_MODEL", engine.DefaultGeminiFastModel),
		GeminiReasoningModel: env.Str("GEMINI_REASONING_MODEL", engine.DefaultGeminiReasoningModel),
		TranscriptLangs:      env.List("TRANSCRIPT_LANGS", "en,ta"),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		ClassifyRPS:          env.Float("CLASSIFY_RPS", 2),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}
	c.HTTPClient = &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, watch pages fetched with plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

package lensserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytlens/internal/keystore"
	"github.com/anatolykoptev/go_ytlens/internal/router"
)

func newTools(t *testing.T) *tools {
	t.Helper()
	ks, err := keystore.Open(filepath.Join(t.TempDir(), "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ks.Close() })
	return &tools{router: router.New(ks), keys: ks}
}

func TestKeyTools_StatusNeverEchoesValues(t *testing.T) {
	ctx := context.Background()
	tl := newTools(t)

	_, st, err := tl.keyStatus(ctx, nil, struct{}{})
	require.NoError(t, err)
	assert.False(t, st.YouTubeAPIKey)
	assert.False(t, st.GeminiAPIKey)

	_, st, err = tl.setKeys(ctx, nil, SetKeysInput{GeminiAPIKey: "secret-gemini"})
	require.NoError(t, err)
	assert.True(t, st.GeminiAPIKey)
	assert.False(t, st.YouTubeAPIKey)

	b, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-gemini")
}

func TestKeyTools_SetRequiresOne(t *testing.T) {
	_, _, err := newTools(t).setKeys(context.Background(), nil, SetKeysInput{YouTubeAPIKey: "  "})
	assert.Error(t, err)
}

func TestFactCheckTool_TooLongIsEvent(t *testing.T) {
	tl := newTools(t)
	_, out, err := tl.factCheck(context.Background(), nil, FactCheckInput{Text: strings.Repeat("x", 501)})
	require.NoError(t, err)
	assert.Equal(t, router.EventDisplayFactCheck, out.Event.Type)
	assert.True(t, out.Event.Payload.IsError)
	assert.Equal(t, router.ErrTextTooLong.Error(), out.Event.Payload.Error)
	assert.Equal(t, []string{"Fact-checking selection..."}, out.Status)
}

func TestFactCheckTool_MissingKey(t *testing.T) {
	tl := newTools(t)
	_, out, err := tl.factCheck(context.Background(), nil, FactCheckInput{Text: "Water boils at 100C at sea level."})
	require.NoError(t, err)
	assert.True(t, out.Event.Payload.IsError)
	assert.Equal(t, "Gemini API key not set", out.Event.Payload.Error)
	assert.NotNil(t, out.Event.Payload.Data)
}

func TestVideoTools_RequireTarget(t *testing.T) {
	tl := newTools(t)
	_, _, err := tl.getTranscript(context.Background(), nil, TranscriptInput{})
	assert.Error(t, err)
	_, _, err = tl.analyzeComments(context.Background(), nil, CommentsInput{URL: " "})
	assert.Error(t, err)
}

func TestCommentsTool_MissingKeys(t *testing.T) {
	tl := newTools(t)
	_, out, err := tl.analyzeComments(context.Background(), nil, CommentsInput{VideoID: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, router.EventDisplayCommentAnalysis, out.Event.Type)
	assert.Equal(t, "Gemini API key not set", out.Event.Payload.Error)
	assert.Equal(t, []string{"Analyzing comments..."}, out.Status)
}

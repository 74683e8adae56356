package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytlens/internal/engine"
)

// ErrNoParsableContent means the classifier reply held no usable JSON object.
var ErrNoParsableContent = errors.New("no parsable content")

// Verdict vocabulary. VerdictUnknown is reserved for failures to classify.
const (
	VerdictTrue          = "True"
	VerdictFalse         = "False"
	VerdictPartiallyTrue = "Partially True"
	VerdictMisleading    = "Misleading"
	VerdictUnverifiable  = "Unverifiable"
	VerdictOpinion       = "Opinion"
	VerdictUnknown       = "Unknown"
)

// NoExplanation is used when the classifier omits an explanation.
const NoExplanation = "No explanation provided."

var verdicts = map[string]string{
	"true":           VerdictTrue,
	"false":          VerdictFalse,
	"partially true": VerdictPartiallyTrue,
	"misleading":     VerdictMisleading,
	"unverifiable":   VerdictUnverifiable,
	"opinion":        VerdictOpinion,
}

// FactCheckResult is the verdict record. Confidence is nil when absent.
type FactCheckResult struct {
	Verdict     string   `json:"verdict"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
	Sources     []string `json:"sources"`
}

// UnknownFactCheck is the fully defaulted result.
func UnknownFactCheck() FactCheckResult {
	return FactCheckResult{Verdict: VerdictUnknown, Explanation: NoExplanation, Sources: []string{}}
}

// FactCheck asks the reasoning model for a verdict on text. A result is always
// returned; on error it is UnknownFactCheck so the caller can still render it.
// Length limits are the caller's job.
func FactCheck(ctx context.Context, creds engine.Credentials, text string) (FactCheckResult, error) {
	if !creds.HasGemini() {
		return UnknownFactCheck(), engine.ErrGeminiKeyNotSet
	}
	engine.IncrFactCheck()

	resp, err := engine.Generate(ctx, strings.TrimSpace(creds.GeminiAPIKey), engine.GenerateRequest{
		Model:      engine.Cfg.GeminiReasoningModel,
		Prompt:     fmt.Sprintf(engine.FactCheckPrompt, time.Now().UTC().Format("2006-01-02"), text),
		JSONOutput: true,
	})
	if err != nil && !errors.Is(err, engine.ErrMalformedResponse) {
		return UnknownFactCheck(), fmt.Errorf("fact check: %w", err)
	}
	return ParseFactCheck(resp)
}

// ParseFactCheck reads a verdict from a generateContent reply. A text part is
// parsed as JSON when present; otherwise the candidate content itself is tried
// as the decoded object.
func ParseFactCheck(resp *engine.GenerateResponse) (FactCheckResult, error) {
	obj, ok := factCheckObject(resp)
	if !ok {
		return UnknownFactCheck(), ErrNoParsableContent
	}
	return factCheckFromObject(obj), nil
}

func factCheckObject(resp *engine.GenerateResponse) (map[string]any, bool) {
	if resp == nil {
		return nil, false
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return decodeObject([]byte(engine.StripFences(text)))
	}
	obj, ok := decodeObject(resp.Content())
	if !ok {
		return nil, false
	}
	for _, k := range []string{"verdict", "confidence", "explanation", "sources"} {
		if _, has := obj[k]; has {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(b []byte) (map[string]any, bool) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func factCheckFromObject(obj map[string]any) FactCheckResult {
	out := UnknownFactCheck()

	if v, ok := obj["verdict"].(string); ok {
		if canon, known := verdicts[strings.ToLower(strings.TrimSpace(v))]; known {
			out.Verdict = canon
		}
	}
	out.Confidence = parseConfidence(obj["confidence"])
	if e, ok := obj["explanation"].(string); ok && strings.TrimSpace(e) != "" {
		out.Explanation = strings.TrimSpace(e)
	}
	if arr, ok := obj["sources"].([]any); ok {
		for _, s := range arr {
			if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
				out.Sources = append(out.Sources, strings.TrimSpace(str))
			}
		}
	}
	return out
}

// parseConfidence accepts numbers and numeric strings. Values in (1, 100] are
// read as percentages; the result is clamped to [0, 1].
func parseConfidence(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil
		}
		f = n
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if f > 1 && f <= 100 {
		f /= 100
	}
	f = max(0, min(1, f))
	return &f
}

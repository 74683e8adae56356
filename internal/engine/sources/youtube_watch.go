package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// CaptionTrack is one entry of the player response's captionTracks list.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"` // "asr" = auto-generated, empty = human
}

// IsASR reports whether the track is auto-generated.
func (t CaptionTrack) IsASR() bool { return t.Kind == "asr" }

// Tag is the user-facing language label: "en" or "en (auto)".
func (t CaptionTrack) Tag() string {
	if t.IsASR() {
		return t.LanguageCode + " (auto)"
	}
	return t.LanguageCode
}

// TrackLocator turns raw watch page markup into caption tracks.
// Scraping heuristics live behind it so they can be swapped and tested
// without the network.
type TrackLocator interface {
	LocateTracks(markup []byte) ([]CaptionTrack, error)
}

var (
	errNoPlayerResponse = errors.New("ytInitialPlayerResponse not found in watch page")
	errNoCaptionSection = errors.New("no captions in ytInitialPlayerResponse")
	errNoCaptionTracks  = errors.New("no caption tracks in watch page")
)

// playerResponseRE marks the start of the player response JSON in watch page HTML.
var playerResponseRE = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*`)

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// PlayerResponseLocator finds the ytInitialPlayerResponse assignment.
// It walks <script> elements first and falls back to a raw scan of the markup
// when goquery yields nothing (truncated or non-HTML bodies).
type PlayerResponseLocator struct{}

// LocateTracks implements TrackLocator.
func (PlayerResponseLocator) LocateTracks(markup []byte) ([]CaptionTrack, error) {
	blob := playerResponseFromScripts(markup)
	if blob == nil {
		blob = playerResponseFromRaw(markup)
	}
	if blob == nil {
		return nil, errNoPlayerResponse
	}

	var pr playerResponse
	if err := json.Unmarshal(blob, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", errNoCaptionSection, pr.PlayabilityStatus.Reason)
		}
		return nil, errNoCaptionSection
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errNoCaptionTracks
	}
	return tracks, nil
}

func playerResponseFromScripts(markup []byte) []byte {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}
	var blob []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		blob = playerResponseFromRaw([]byte(s.Text()))
		return blob == nil
	})
	return blob
}

func playerResponseFromRaw(b []byte) []byte {
	loc := playerResponseRE.FindIndex(b)
	if loc == nil {
		return nil
	}
	return extractJSON(b[loc[1]:])
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

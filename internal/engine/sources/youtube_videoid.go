package sources

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrNotWatchPage = errors.New("not a video watch page")
	ErrNoVideoID    = errors.New("could not extract video id")
)

var bareVideoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ResolveVideoID returns the "v" query parameter of a watch page URL.
// youtu.be short links resolve to their first path segment, and a bare
// 11-character id is returned unchanged.
func ResolveVideoID(pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if bareVideoIDRE.MatchString(pageURL) {
		return pageURL, nil
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", ErrNotWatchPage
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}

	switch {
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", ErrNoVideoID
		}
		return id, nil
	case host == "youtube.com" && strings.TrimRight(u.Path, "/") == "/watch":
		id := strings.TrimSpace(u.Query().Get("v"))
		if id == "" {
			return "", ErrNoVideoID
		}
		return id, nil
	}
	return "", ErrNotWatchPage
}

package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", nil},
		{"https://youtube.com/watch?v=abc123&t=42s", "abc123", nil},
		{"https://m.youtube.com/watch/?feature=share&v=abc123", "abc123", nil},
		{"https://music.youtube.com/watch?v=abc123", "abc123", nil},
		{"https://youtu.be/dQw4w9WgXcQ?si=xyz", "dQw4w9WgXcQ", nil},
		{"  dQw4w9WgXcQ ", "dQw4w9WgXcQ", nil},
		{"https://www.youtube.com/watch?list=PL1", "", ErrNoVideoID},
		{"https://www.youtube.com/watch?v=", "", ErrNoVideoID},
		{"https://youtu.be/", "", ErrNoVideoID},
		{"https://www.youtube.com/feed/subscriptions", "", ErrNotWatchPage},
		{"https://example.com/watch?v=abc123", "", ErrNotWatchPage},
		{"not a url", "", ErrNotWatchPage},
		{"", "", ErrNotWatchPage},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveVideoID(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

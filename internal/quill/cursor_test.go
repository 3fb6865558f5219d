package quill

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	published := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	created := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cursor Cursor
	}{
		{
			name:   "recency",
			cursor: RecencyCursor{PublishedAt: &published, CreatedAt: created, ID: "art-1"},
		},
		{
			name:   "recency with nil published_at",
			cursor: RecencyCursor{PublishedAt: nil, CreatedAt: created, ID: "art-2"},
		},
		{
			name:   "relevance",
			cursor: RelevanceCursor{Relevance: 1.75, PublishedAt: &published, CreatedAt: created, ID: "art-3"},
		},
		{
			name:   "relevance with zero score",
			cursor: RelevanceCursor{Relevance: 0, PublishedAt: nil, CreatedAt: created, ID: "art-4"},
		},
		{
			name:   "feed",
			cursor: FeedCursor{RefreshedAt: &published, ID: "feed-1"},
		},
		{
			name:   "feed never refreshed",
			cursor: FeedCursor{RefreshedAt: nil, ID: "feed-2"},
		},
		{
			name:   "feed cursor on a pinned row",
			cursor: FeedCursor{Pinned: true, RefreshedAt: &published, ID: "feed-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := EncodeCursor(tt.cursor)
			require.NoError(t, err)

			got, err := DecodeCursor(token)
			require.NoError(t, err)
			assert.Equal(t, tt.cursor, got)
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "!!! not a cursor !!!"},
		{name: "garbage payload", token: "Z2FyYmFnZQ"},
		{name: "missing id", token: mustEncodeWire(t, `{"f":"recency","c":"2024-03-15T00:00:00Z"}`)},
		{name: "recency missing created_at", token: mustEncodeWire(t, `{"f":"recency","id":"art-1"}`)},
		{name: "relevance missing score", token: mustEncodeWire(t, `{"f":"relevance","id":"art-1","c":"2024-03-15T00:00:00Z"}`)},
		{name: "unknown flavor", token: mustEncodeWire(t, `{"f":"alphabetical","id":"art-1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadCursor)
		})
	}
}

func TestCursorIsOpaque(t *testing.T) {
	published := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	token, err := EncodeCursor(RecencyCursor{PublishedAt: &published, CreatedAt: published, ID: "art-1"})
	require.NoError(t, err)

	// Tokens should be URL-safe with no padding to worry about.
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}

func TestSearchActive(t *testing.T) {
	assert.True(t, SearchActive("hello"))
	assert.False(t, SearchActive(""))
	assert.False(t, SearchActive("   "))
	assert.False(t, SearchActive("*"))
}

func mustEncodeWire(t *testing.T, raw string) string {
	t.Helper()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

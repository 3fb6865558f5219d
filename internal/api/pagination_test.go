package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrs "github.com/quillfeed/quill/internal/errors"
)

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 20, wantOffset: 0},
		{name: "explicit", query: "limit=50&offset=10", wantLimit: 50, wantOffset: 10},
		{name: "over max clamps to max", query: "limit=5000", wantLimit: 100},
		{name: "at max passes through", query: "limit=100", wantLimit: 100},
		{name: "zero limit falls back", query: "limit=0", wantLimit: 20},
		{name: "negative offset clamps", query: "offset=-5", wantLimit: 20, wantOffset: 0},
		{name: "garbage ignored", query: "limit=abc&offset=xyz", wantLimit: 20, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/articles?"+tt.query, nil)
			limit, offset := parsePaginationParams(r, 20, 100)

			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestParseDateRange(t *testing.T) {
	t.Run("widens days to instants", func(t *testing.T) {
		q := url.Values{"from_date": {"2024-06-01"}, "to_date": {"2024-06-30"}}

		from, to, err := parseDateRange(q)
		require.NoError(t, err)
		require.NotNil(t, from)
		require.NotNil(t, to)

		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *from)
		// End of day, so articles published any time on the 30th still match.
		assert.Equal(t, time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC), *to)
	})

	t.Run("absent params stay nil", func(t *testing.T) {
		from, to, err := parseDateRange(url.Values{})
		require.NoError(t, err)
		assert.Nil(t, from)
		assert.Nil(t, to)
	})

	t.Run("bad format is a validation error", func(t *testing.T) {
		_, _, err := parseDateRange(url.Values{"from_date": {"June 1st"}})
		require.Error(t, err)

		var sErr *qerrs.Error
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, http.StatusBadRequest, sErr.Status)
		assert.Equal(t, qerrs.ReasonValidation, sErr.Reason)
		require.Len(t, sErr.Details, 1)
		assert.Equal(t, "from_date", sErr.Details[0].Field)
	})
}

func TestSplitParam(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "single", in: []string{"a"}, want: []string{"a"}},
		{name: "comma separated", in: []string{"a,b,c"}, want: []string{"a", "b", "c"}},
		{name: "repeated and mixed", in: []string{"a,b", "c"}, want: []string{"a", "b", "c"}},
		{name: "whitespace and empties dropped", in: []string{" a , ,b", ""}, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParam(tt.in))
		})
	}
}

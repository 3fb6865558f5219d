package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	qerrs "github.com/quillfeed/quill/internal/errors"
)

// paginationMeta holds pagination metadata for API responses. Total is
// informational under cursor pagination; offset only appears for offset
// listings and next_cursor only for keyset ones.
type paginationMeta struct {
	Total      int    `json:"total,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// parsePaginationParams parses limit/offset from an HTTP request,
// clamping both into sane bounds.
func parsePaginationParams(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	query := r.URL.Query()

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, _ := strconv.Atoi(query.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

const dateLayout = "2006-01-02"

// parseDateRange reads from_date/to_date as inclusive calendar days and
// widens them to day-start and day-end instants.
func parseDateRange(query url.Values) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if v := query.Get("from_date"); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, qerrs.E(http.StatusBadRequest, "from_date must be YYYY-MM-DD", qerrs.Detail{Field: "from_date", Error: err.Error()})
		}
		from = &day
	}
	if v := query.Get("to_date"); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, qerrs.E(http.StatusBadRequest, "to_date must be YYYY-MM-DD", qerrs.Detail{Field: "to_date", Error: err.Error()})
		}
		end := day.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	return from, to, nil
}

// splitParam flattens repeated and comma-separated id params into one list.
func splitParam(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

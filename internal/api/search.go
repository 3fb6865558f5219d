package api

import (
	"net/http"

	"github.com/quillfeed/quill/internal/search"
)

type SearchResp struct {
	Data []search.Hit `json:"data"`
}

// getSearch runs the unified cross-entity search. It is single-shot: at
// most 20 merged hits, no cursor, no total.
func (s Server) getSearch(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		term = r.URL.Query().Get("q")
	)

	hits, err := s.searcher.UniversalSearch(ctx, term)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, SearchResp{Data: hits})
}

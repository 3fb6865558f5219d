package api

import (
	"net/http"
	"time"

	qerrs "github.com/quillfeed/quill/internal/errors"
	"github.com/quillfeed/quill/internal/quill"
)

type FeedResp struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Pinned      bool       `json:"pinned"`
	RefreshedAt *time.Time `json:"refreshed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func apiFeed(f quill.Feed) FeedResp {
	var (
		title string
		desc  string
	)
	if f.Title != nil {
		title = *f.Title
	}
	if f.Description != nil {
		desc = *f.Description
	}

	return FeedResp{
		ID:          f.ID,
		Title:       title,
		URL:         f.URL,
		Description: desc,
		Pinned:      f.Pinned,
		RefreshedAt: f.RefreshedAt,
		CreatedAt:   f.CreatedAt,
	}
}

type FeedListResp struct {
	Data       []FeedResp     `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

func (s Server) getFeeds(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx   = r.Context()
		query = r.URL.Query()
	)

	limit, offset := parsePaginationParams(r, 50, 200) // default=50, max=200

	args := quill.ListFeedsArgs{
		Order:  quill.FeedOrderRecent,
		Limit:  limit,
		Offset: offset,
		Cursor: query.Get("cursor"),
	}
	switch v := query.Get("order_by"); v {
	case "", string(quill.FeedOrderRecent):
	case string(quill.FeedOrderName):
		args.Order = quill.FeedOrderName
	default:
		return qerrs.E(http.StatusBadRequest, "order_by must be name or recent", qerrs.Detail{Field: "order_by", Error: "unknown value " + v})
	}

	page, err := s.feeds.ListFeeds(ctx, args)
	if err != nil {
		return err
	}

	data := make([]FeedResp, 0, len(page.Items))
	for _, f := range page.Items {
		data = append(data, apiFeed(f))
	}

	meta := paginationMeta{
		Total:      page.Total,
		Limit:      page.Limit,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}
	if args.Order == quill.FeedOrderName {
		meta.Offset = page.Offset
	}

	return writeJSON(w, http.StatusOK, FeedListResp{Data: data, Pagination: meta})
}

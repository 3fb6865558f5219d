package api

import (
	"net/http"
	"time"

	qerrs "github.com/quillfeed/quill/internal/errors"
	"github.com/quillfeed/quill/internal/quill"
)

type ArticleResp struct {
	ID             string     `json:"id"`
	FeedID         string     `json:"feed_id"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
	Title          string     `json:"title"`
	URL            string     `json:"url"`
	Summary        string     `json:"summary"`
	IsRead         bool       `json:"is_read"`
	ReadLater      bool       `json:"read_later"`
	PublishedAt    *time.Time `json:"published_at"`
	CreatedAt      time.Time  `json:"created_at"`
	Relevance      float64    `json:"relevance,omitempty"`
}

func apiArticle(a quill.Article) ArticleResp {
	return ArticleResp{
		ID:             a.ID,
		FeedID:         a.FeedID,
		SubscriptionID: a.SubscriptionID,
		Title:          a.Title,
		URL:            a.URL,
		Summary:        a.Summary,
		IsRead:         a.IsRead,
		ReadLater:      a.ReadLater,
		PublishedAt:    a.PublishedAt,
		CreatedAt:      a.CreatedAt,
		Relevance:      a.Relevance,
	}
}

type ArticleListResp struct {
	Data       []ArticleResp  `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

func (s Server) getArticles(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx   = r.Context()
		query = r.URL.Query()
	)

	limit, _ := parsePaginationParams(r, 20, 100) // default=20, max=100

	from, to, err := parseDateRange(query)
	if err != nil {
		return err
	}

	args := quill.ListArticlesArgs{
		SubscriptionIDs: splitParam(query["subscription_ids"]),
		FolderIDs:       splitParam(query["folder_ids"]),
		TagIDs:          splitParam(query["tag_ids"]),
		From:            from,
		To:              to,
		Query:           query.Get("q"),
		Limit:           limit,
		Cursor:          query.Get("cursor"),
	}

	switch v := query.Get("is_read"); v {
	case "":
	case string(quill.ReadFilterRead), string(quill.ReadFilterUnread):
		args.Read = quill.ReadFilter(v)
	default:
		return qerrs.E(http.StatusBadRequest, "is_read must be read or unread", qerrs.Detail{Field: "is_read", Error: "unknown value " + v})
	}

	switch v := query.Get("read_later"); v {
	case "":
	case "true", "false":
		later := v == "true"
		args.ReadLater = &later
	default:
		return qerrs.E(http.StatusBadRequest, "read_later must be true or false", qerrs.Detail{Field: "read_later", Error: "unknown value " + v})
	}

	page, err := s.articles.ListArticles(ctx, args)
	if err != nil {
		return err
	}

	data := make([]ArticleResp, 0, len(page.Items))
	for _, a := range page.Items {
		data = append(data, apiArticle(a))
	}

	return writeJSON(w, http.StatusOK, ArticleListResp{
		Data: data,
		Pagination: paginationMeta{
			Total:      page.Total,
			Limit:      page.Limit,
			HasMore:    page.HasMore,
			NextCursor: page.NextCursor,
		},
	})
}

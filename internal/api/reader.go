package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/gorilla/mux"
	"github.com/sym01/htmlsanitizer"
)

type ReaderResp struct {
	ID            string     `json:"id"`
	FeedID        string     `json:"feed_id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	PublishedAt   *time.Time `json:"published_at"`
	ReaderContent string     `json:"reader_content"`
}

func (s Server) getArticleContent(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx       = r.Context()
		articleID = mux.Vars(r)["articleID"]
	)

	article, err := s.articles.Article(ctx, articleID)
	if err != nil {
		return err
	}

	// Cache results for less processing and prevent refetches
	if resp, ok := s.readerCache.Get(articleID); ok {
		return writeJSON(w, http.StatusOK, resp)
	}

	u, err := url.Parse(article.URL)
	if err != nil {
		return fmt.Errorf("error with the article's url: %s", err)
	}

	// Fetch the actual site
	resp, err := s.fetchClient.Get(article.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Strip it for readability and sanitize
	parser := readability.NewParser()
	parsed, err := parser.Parse(resp.Body, u)
	if err != nil {
		return err
	}

	sanitizer := htmlsanitizer.NewHTMLSanitizer()
	contents, err := sanitizer.SanitizeString(parsed.Content)
	if err != nil {
		return err
	}

	ret := ReaderResp{
		ID:            article.ID,
		FeedID:        article.FeedID,
		URL:           article.URL,
		Title:         article.Title,
		Summary:       article.Summary,
		PublishedAt:   article.PublishedAt,
		ReaderContent: contents,
	}
	// Add to the cache for next time
	s.readerCache.Add(article.ID, ret)

	return writeJSON(w, http.StatusOK, ret)
}

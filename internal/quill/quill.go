// Package quill holds the domain types for the feed retrieval engine.
//
// The engine is read-only: rows are written by external collaborators
// (ingestion, CRUD surfaces) and this package only describes how they are
// filtered, ranked and paged.
package quill

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound signals a referenced resource (or filter id) that does
	// not exist for the requesting principal.
	ErrNotFound = errors.New("resource not found")

	// ErrBadCursor signals a pagination token that is empty, malformed, or
	// was issued for a different listing mode.
	ErrBadCursor = errors.New("invalid cursor")
)

type (
	// Article is a single entry pulled from a feed.
	//
	// PublishedAt is absent for entries whose feed never declared a publish
	// time; CreatedAt (ingestion time) is always present and is the
	// secondary sort key.
	Article struct {
		ID             string     `db:"id"`
		FeedID         string     `db:"feed_id"`
		SubscriptionID string     `db:"subscription_id"`
		Title          string     `db:"title"`
		URL            string     `db:"url"`
		Summary        string     `db:"summary"`
		IsRead         bool       `db:"is_read"`
		ReadLater      bool       `db:"read_later"`
		PublishedAt    *time.Time `db:"published_at"`
		CreatedAt      time.Time  `db:"created_at"`

		// Relevance is only meaningful when the row came out of a search;
		// listings without a term select a constant.
		Relevance float64 `db:"relevance"`
	}

	// Feed represents an RSS/Atom feed's details.
	Feed struct {
		ID          string     `db:"id"`
		Title       *string    `db:"title"`
		URL         string     `db:"url"`
		Description *string    `db:"description"`
		Pinned      bool       `db:"pinned"`
		RefreshedAt *time.Time `db:"refreshed_at"`
		CreatedAt   time.Time  `db:"created_at"`
		Relevance   float64    `db:"relevance"`
	}

	// Subscription ties a feed into the account, optionally inside a folder.
	Subscription struct {
		ID        string    `db:"id"`
		FeedID    string    `db:"feed_id"`
		FolderID  *string   `db:"folder_id"`
		CreatedAt time.Time `db:"created_at"`
	}

	Folder struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
	}

	Tag struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
	}
)

// ReadFilter narrows a listing to read or unread articles.
type ReadFilter string

const (
	ReadFilterAny    ReadFilter = ""
	ReadFilterRead   ReadFilter = "read"
	ReadFilterUnread ReadFilter = "unread"
)

// ListArticlesArgs is the filter set for an article listing or search.
// All fields are optional; zero values apply no filter.
type ListArticlesArgs struct {
	SubscriptionIDs []string
	FolderIDs       []string
	TagIDs          []string
	Read            ReadFilter
	ReadLater       *bool

	// Inclusive instants; the API layer converts calendar days to
	// day-start/day-end bounds before they get here.
	From *time.Time
	To   *time.Time

	// Query is free text. Empty or "*" disables search mode, which also
	// switches the cursor flavor back to plain recency.
	Query string

	Limit  int
	Cursor string
}

// FeedOrder selects the feed listing strategy: recency uses keyset cursors,
// name uses offset/limit over a fully sorted set.
type FeedOrder string

const (
	FeedOrderRecent FeedOrder = "recent"
	FeedOrderName   FeedOrder = "name"
)

type ListFeedsArgs struct {
	Order  FeedOrder
	Limit  int
	Offset int
	Cursor string
}

// Page is one page of results plus the state needed to fetch the next one.
//
// Total is informational under cursor pagination: it comes from a separate
// count and is not guaranteed consistent with the window under concurrent
// writes. NextCursor is only set when HasMore is true.
type Page[T any] struct {
	Items      []T
	Total      int
	Limit      int
	Offset     int
	HasMore    bool
	NextCursor string
}

type (
	ArticleService interface {
		// ListArticles validates the filter ids, then returns one page.
		// Unknown filter ids fail with ErrNotFound before execution.
		ListArticles(ctx context.Context, args ListArticlesArgs) (Page[Article], error)
		// Article fetches a single article by id.
		Article(ctx context.Context, id string) (Article, error)
		// SearchArticles returns up to limit scored candidates for a term.
		SearchArticles(ctx context.Context, term string, limit int) ([]Article, error)
	}

	FeedService interface {
		ListFeeds(ctx context.Context, args ListFeedsArgs) (Page[Feed], error)
		SearchFeeds(ctx context.Context, term string, limit int) ([]Feed, error)
	}

	TaxonomyService interface {
		AllTags(ctx context.Context) ([]Tag, error)
		AllFolders(ctx context.Context) ([]Folder, error)
	}
)

// SearchActive reports whether a free-text term actually turns on search
// mode. Blank and wildcard terms degrade the listing to pure recency.
func SearchActive(term string) bool {
	term = strings.TrimSpace(term)
	return term != "" && term != "*"
}

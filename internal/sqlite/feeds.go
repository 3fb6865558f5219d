package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/quillfeed/quill/internal/quill"
)

const defaultFeedLimit = 50

var feedColumns = []string{
	"f.id",
	"f.url",
	"f.title",
	"f.description",
	"f.pinned",
	"f.refreshed_at",
	"f.created_at",
}

func (r Repo) ListFeeds(ctx context.Context, args quill.ListFeedsArgs) (quill.Page[quill.Feed], error) {
	if args.Order == quill.FeedOrderName {
		return r.listFeedsByName(ctx, args)
	}

	return r.listFeedsByRecency(ctx, args)
}

// listFeedsByName is offset/limit pagination over the fully evaluated set,
// sorted case-insensitively by display title. Feed counts are small enough
// that sorting in memory beats teaching the database about collations.
func (r Repo) listFeedsByName(ctx context.Context, args quill.ListFeedsArgs) (quill.Page[quill.Feed], error) {
	var page quill.Page[quill.Feed]

	query, qargs, err := sq.Select(feedColumns...).From("feeds f").ToSql()
	if err != nil {
		return page, fmt.Errorf("error generating SQL query: %s", err)
	}

	var feeds []quill.Feed
	if err := r.db.SelectContext(ctx, &feeds, query, qargs...); err != nil {
		return page, fmt.Errorf("error selecting feeds: %s", err)
	}

	sort.SliceStable(feeds, func(i, j int) bool {
		a, b := strings.ToLower(displayTitle(feeds[i])), strings.ToLower(displayTitle(feeds[j]))
		if a != b {
			return a < b
		}
		return feeds[i].ID < feeds[j].ID
	})

	limit := args.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	offset := args.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(feeds)
	items := []quill.Feed{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		items = feeds[offset:end]
	}

	return quill.Page[quill.Feed]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

func (r Repo) listFeedsByRecency(ctx context.Context, args quill.ListFeedsArgs) (quill.Page[quill.Feed], error) {
	var page quill.Page[quill.Feed]

	limit := args.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	b := sq.Select(feedColumns...).
		From("feeds f").
		OrderBy(orderFeeds...)

	if args.Cursor != "" {
		cur, err := quill.DecodeCursor(args.Cursor)
		if err != nil {
			return page, err
		}
		c, ok := cur.(quill.FeedCursor)
		if !ok {
			return page, fmt.Errorf("cursor flavor %q is not a feed cursor: %w", cur.Flavor(), quill.ErrBadCursor)
		}
		b = b.Where(afterFeed(c))
	}

	query, qargs, err := b.Limit(uint64(limit + 1)).ToSql()
	if err != nil {
		return page, fmt.Errorf("error generating SQL query: %s", err)
	}

	var rows []quill.Feed
	if err := r.db.SelectContext(ctx, &rows, query, qargs...); err != nil {
		return page, fmt.Errorf("error selecting feeds: %s", err)
	}

	items, hasMore := trimPage(rows, limit)
	page = quill.Page[quill.Feed]{
		Items:   items,
		Limit:   limit,
		HasMore: hasMore,
	}

	if hasMore {
		last := items[len(items)-1]
		next, err := quill.EncodeCursor(quill.FeedCursor{
			Pinned:      last.Pinned,
			RefreshedAt: last.RefreshedAt,
			ID:          last.ID,
		})
		if err != nil {
			return page, err
		}
		page.NextCursor = next
	}

	total, err := r.countFeeds(ctx)
	if err != nil {
		return page, err
	}
	page.Total = total

	return page, nil
}

func (r Repo) countFeeds(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM feeds;`

	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting feeds: %s", err)
	}

	return count, nil
}

// SearchFeeds returns up to limit feeds scored against the term, best
// first. Scoring mirrors the article pipeline: full-text rank against
// title/description, or trigram similarity of the display title, whichever
// is stronger.
func (r Repo) SearchFeeds(ctx context.Context, term string, limit int) ([]quill.Feed, error) {
	if !quill.SearchActive(term) {
		return []quill.Feed{}, nil
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	b := sq.Select(feedColumns...).
		Column(sq.Expr("MAX(-bm25(feeds_fts), title_sim(COALESCE(f.title, f.url), ?)) AS relevance", term)).
		From("feeds f").
		Join("feeds_fts ON feeds_fts.rowid = f.rowid").
		Where("feeds_fts MATCH ?", ftsQuery(term)).
		OrderBy("relevance DESC", "f.refreshed_at IS NULL", "f.refreshed_at DESC", "f.id DESC").
		Limit(uint64(limit))

	query, qargs, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error generating SQL query: %s", err)
	}

	var feeds []quill.Feed
	if err := r.db.SelectContext(ctx, &feeds, query, qargs...); err != nil {
		return nil, fmt.Errorf("error searching feeds: %s", err)
	}

	return feeds, nil
}

func displayTitle(f quill.Feed) string {
	if f.Title != nil && *f.Title != "" {
		return *f.Title
	}
	return f.URL
}

package sqlite

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/quillfeed/quill/internal/quill"
)

// Sort orders for the listing modes. NULL published/refreshed timestamps
// sort after every non-NULL value (published-last semantics); id is always
// the final tie-break so the total order is unambiguous.
var (
	orderRecency = []string{
		"a.published_at IS NULL",
		"a.published_at DESC",
		"a.created_at DESC",
		"a.id DESC",
	}
	orderRelevance = append([]string{"relevance DESC"}, orderRecency...)
	orderFeeds     = []string{
		"f.pinned DESC",
		"f.refreshed_at IS NULL",
		"f.refreshed_at DESC",
		"f.id DESC",
	}
)

// afterRecency selects article rows strictly after the cursor position in
// recency order.
func afterRecency(c quill.RecencyCursor) sq.Sqlizer {
	tie := sq.Or{
		sq.Expr("a.created_at < ?", c.CreatedAt),
		sq.And{
			sq.Expr("a.created_at = ?", c.CreatedAt),
			sq.Expr("a.id < ?", c.ID),
		},
	}

	if c.PublishedAt == nil {
		// The cursor row had no publish time, so only other unpublished
		// rows can still follow it.
		return sq.And{sq.Expr("a.published_at IS NULL"), tie}
	}

	return sq.Or{
		sq.Expr("a.published_at < ?", *c.PublishedAt),
		sq.Expr("a.published_at IS NULL"),
		sq.And{sq.Expr("a.published_at = ?", *c.PublishedAt), tie},
	}
}

// afterRelevance selects article rows strictly after the cursor position
// in relevance order. The score is a real column of the inner scored
// query, so the predicate compares it directly instead of re-running the
// FTS rank.
func afterRelevance(c quill.RelevanceCursor) sq.Sqlizer {
	return sq.Or{
		sq.Expr("a.relevance < ?", c.Relevance),
		sq.And{
			sq.Expr("a.relevance = ?", c.Relevance),
			afterRecency(quill.RecencyCursor{
				PublishedAt: c.PublishedAt,
				CreatedAt:   c.CreatedAt,
				ID:          c.ID,
			}),
		},
	}
}

// afterFeed selects feed rows strictly after the cursor position in the
// feed-list recency order.
//
// When the cursor row was unpinned, pinned feeds bypass the predicate
// entirely so they stay visible on every page. When the cursor row was
// itself pinned, every unpinned feed still lies strictly ahead in the
// pinned-first order, and the pinned block advances by refresh recency;
// re-admitting the whole pinned block there would never let a page past it.
func afterFeed(c quill.FeedCursor) sq.Sqlizer {
	var within sq.Sqlizer
	if c.RefreshedAt == nil {
		within = sq.And{
			sq.Expr("f.refreshed_at IS NULL"),
			sq.Expr("f.id < ?", c.ID),
		}
	} else {
		within = sq.Or{
			sq.Expr("f.refreshed_at < ?", *c.RefreshedAt),
			sq.Expr("f.refreshed_at IS NULL"),
			sq.And{
				sq.Expr("f.refreshed_at = ?", *c.RefreshedAt),
				sq.Expr("f.id < ?", c.ID),
			},
		}
	}

	if c.Pinned {
		return sq.Or{
			sq.Expr("f.pinned = 0"),
			sq.And{sq.Expr("f.pinned = 1"), within},
		}
	}

	return sq.Or{sq.Expr("f.pinned = 1"), within}
}

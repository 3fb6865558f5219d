package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/quillfeed/quill/internal/quill"
)

const defaultArticleLimit = 20

// relevanceExpr scores a row as the greater of two signals: the full-text
// rank of its indexed content (bm25 is smaller-is-better, hence negated)
// and the trigram similarity of its title to the raw term. A short exact
// title and a keyword-dense body can each surface a result on their own.
//
// It is only valid inside the non-aggregate inner query over the FTS
// match; fts5 auxiliary functions cannot run in a grouped query, so the
// deduplicating outer query reads the materialized relevance column.
const relevanceExpr = "MAX(-bm25(articles_fts), title_sim(a.title, ?))"

var articleColumns = []string{
	"a.id",
	"a.feed_id",
	"a.title",
	"a.url",
	"a.summary",
	"a.is_read",
	"a.read_later",
	"a.published_at",
	"a.created_at",
}

func (r Repo) ListArticles(ctx context.Context, args quill.ListArticlesArgs) (quill.Page[quill.Article], error) {
	if err := r.checkFilterIDs(ctx, args); err != nil {
		return quill.Page[quill.Article]{}, err
	}

	return r.listArticles(ctx, args, true)
}

func (r Repo) SearchArticles(ctx context.Context, term string, limit int) ([]quill.Article, error) {
	page, err := r.listArticles(ctx, quill.ListArticlesArgs{Query: term, Limit: limit}, false)
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}

func (r Repo) Article(ctx context.Context, id string) (quill.Article, error) {
	const q = `SELECT id, feed_id, title, url, summary, is_read, read_later, published_at, created_at
	FROM articles WHERE id = ?;`

	var article quill.Article
	err := r.db.GetContext(ctx, &article, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return quill.Article{}, quill.ErrNotFound
	}
	if err != nil {
		return quill.Article{}, fmt.Errorf("error fetching article: %s", err)
	}

	return article, nil
}

func (r Repo) listArticles(ctx context.Context, args quill.ListArticlesArgs, withTotal bool) (quill.Page[quill.Article], error) {
	var (
		page   quill.Page[quill.Article]
		search = quill.SearchActive(args.Query)
		limit  = args.Limit
	)
	if limit <= 0 {
		limit = defaultArticleLimit
	}

	var b sq.SelectBuilder
	if search {
		b = scoredArticleBase(args, articleColumns...).
			Column("MIN(s.id) AS subscription_id").
			Column("a.relevance AS relevance").
			GroupBy("a.id").
			OrderBy(orderRelevance...)
	} else {
		b = articleBase(args, articleColumns...).
			Column("MIN(s.id) AS subscription_id").
			Column("1.0 AS relevance").
			GroupBy("a.id").
			OrderBy(orderRecency...)
	}

	if args.Cursor != "" {
		pred, err := articleAfter(args.Cursor, search)
		if err != nil {
			return page, err
		}
		b = b.Where(pred)
	}

	query, qargs, err := b.Limit(uint64(limit + 1)).ToSql()
	if err != nil {
		return page, fmt.Errorf("error generating SQL query: %s", err)
	}

	var rows []quill.Article
	if err := r.db.SelectContext(ctx, &rows, query, qargs...); err != nil {
		return page, fmt.Errorf("error selecting articles: %s", err)
	}

	items, hasMore := trimPage(rows, limit)
	page = quill.Page[quill.Article]{
		Items:   items,
		Limit:   limit,
		HasMore: hasMore,
	}

	// The next cursor resumes from the last row actually returned, not the
	// discarded lookahead row.
	if hasMore {
		next, err := articleCursor(items[len(items)-1], search)
		if err != nil {
			return page, err
		}
		page.NextCursor = next
	}

	if withTotal {
		total, err := r.countArticles(ctx, args)
		if err != nil {
			return page, err
		}
		page.Total = total
	}

	return page, nil
}

func (r Repo) countArticles(ctx context.Context, args quill.ListArticlesArgs) (int, error) {
	query, qargs, err := articleBase(args, "COUNT(DISTINCT a.id)").ToSql()
	if err != nil {
		return 0, fmt.Errorf("error generating count query: %s", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, qargs...); err != nil {
		return 0, fmt.Errorf("error counting articles: %s", err)
	}

	return count, nil
}

// articleBase composes the filtered candidate set shared by the plain
// listing and the count queries. The free-text filter joins the FTS index
// before any deduplication so the index narrows the set as early as
// possible.
func articleBase(args quill.ListArticlesArgs, columns ...string) sq.SelectBuilder {
	b := sq.Select(columns...).
		From("articles a").
		Join("subscriptions s ON s.feed_id = a.feed_id")

	if quill.SearchActive(args.Query) {
		b = b.Join("articles_fts ON articles_fts.rowid = a.rowid").
			Where("articles_fts MATCH ?", ftsQuery(args.Query))
	}

	return articleFilters(b, args)
}

// scoredArticleBase is the search-mode variant: the FTS match and its
// relevance score are evaluated in an inner query so the grouped outer
// query only touches plain columns.
func scoredArticleBase(args quill.ListArticlesArgs, columns ...string) sq.SelectBuilder {
	inner := sq.Select("a.*").
		Column(sq.Expr(relevanceExpr+" AS relevance", args.Query)).
		From("articles a").
		Join("articles_fts ON articles_fts.rowid = a.rowid").
		Where("articles_fts MATCH ?", ftsQuery(args.Query))

	b := sq.Select(columns...).
		FromSelect(inner, "a").
		Join("subscriptions s ON s.feed_id = a.feed_id")

	return articleFilters(b, args)
}

func articleFilters(b sq.SelectBuilder, args quill.ListArticlesArgs) sq.SelectBuilder {
	if len(args.SubscriptionIDs) > 0 {
		b = b.Where(sq.Eq{"s.id": args.SubscriptionIDs})
	}
	if len(args.FolderIDs) > 0 {
		b = b.Where(sq.Eq{"s.folder_id": args.FolderIDs})
	}
	if len(args.TagIDs) > 0 {
		b = b.Join("subscription_tags st ON st.subscription_id = s.id").
			Where(sq.Eq{"st.tag_id": args.TagIDs})
	}

	switch args.Read {
	case quill.ReadFilterRead:
		b = b.Where("a.is_read = 1")
	case quill.ReadFilterUnread:
		b = b.Where("a.is_read = 0")
	}
	if args.ReadLater != nil {
		b = b.Where(sq.Eq{"a.read_later": *args.ReadLater})
	}

	if args.From != nil {
		b = b.Where("a.published_at >= ?", *args.From)
	}
	if args.To != nil {
		b = b.Where("a.published_at <= ?", *args.To)
	}

	return b
}

// articleAfter decodes the incoming cursor and turns it into a
// strictly-after predicate, rejecting tokens issued under the other mode.
func articleAfter(token string, search bool) (sq.Sqlizer, error) {
	cur, err := quill.DecodeCursor(token)
	if err != nil {
		return nil, err
	}

	switch c := cur.(type) {
	case quill.RelevanceCursor:
		if !search {
			return nil, fmt.Errorf("search cursor used on a plain listing: %w", quill.ErrBadCursor)
		}
		return afterRelevance(c), nil
	case quill.RecencyCursor:
		if search {
			return nil, fmt.Errorf("plain cursor used on a search listing: %w", quill.ErrBadCursor)
		}
		return afterRecency(c), nil
	default:
		return nil, fmt.Errorf("cursor flavor %q is not an article cursor: %w", cur.Flavor(), quill.ErrBadCursor)
	}
}

func articleCursor(a quill.Article, search bool) (string, error) {
	if search {
		return quill.EncodeCursor(quill.RelevanceCursor{
			Relevance:   a.Relevance,
			PublishedAt: a.PublishedAt,
			CreatedAt:   a.CreatedAt,
			ID:          a.ID,
		})
	}

	return quill.EncodeCursor(quill.RecencyCursor{
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		ID:          a.ID,
	})
}

// checkFilterIDs fails fast with ErrNotFound when a referenced filter id
// does not exist, instead of silently returning an empty page.
func (r Repo) checkFilterIDs(ctx context.Context, args quill.ListArticlesArgs) error {
	if err := r.ensureExist(ctx, "subscriptions", args.SubscriptionIDs); err != nil {
		return err
	}
	if err := r.ensureExist(ctx, "folders", args.FolderIDs); err != nil {
		return err
	}
	return r.ensureExist(ctx, "tags", args.TagIDs)
}

func (r Repo) ensureExist(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, qargs, err := sq.Select("id").From(table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, qargs...); err != nil {
		return fmt.Errorf("error checking %s filter: %s", table, err)
	}

	set := make(map[string]struct{}, len(found))
	for _, id := range found {
		set[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return fmt.Errorf("%s filter %q: %w", strings.TrimSuffix(table, "s"), id, quill.ErrNotFound)
		}
	}

	return nil
}

// ftsQuery rewrites free text into an FTS5 match expression that cannot
// trip the query parser: each token is quoted and tokens are implicitly
// ANDed.
func ftsQuery(term string) string {
	fields := strings.Fields(term)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}

	return strings.Join(quoted, " ")
}

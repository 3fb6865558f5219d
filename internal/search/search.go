// Package search merges ranked results from the four entity types into one
// score-normalized, weighted list.
package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/quillfeed/quill/internal/quill"
	"github.com/quillfeed/quill/logger"
)

// HitType tags which entity a merged hit came from.
type HitType string

const (
	HitTypeArticle HitType = "article"
	HitTypeFeed    HitType = "feed"
	HitTypeTag     HitType = "tag"
	HitTypeFolder  HitType = "folder"
)

// Hit is a normalized cross-entity result. Score is the weighted,
// min-max-normalized relevance in [0, 1].
type Hit struct {
	Type    HitType `json:"type"`
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Payload any     `json:"payload"`
}

const (
	// perTypeLimit caps each entity type's candidates before the merge.
	perTypeLimit = 20
	// maxHits caps the merged result list.
	maxHits = 20
)

// Per-type weights express the product prior that exact structural matches
// (a feed or article) outrank softer matches (a tag or folder name).
const (
	weightFeed    = 1.0
	weightArticle = 0.8
	weightTag     = 0.5
	weightFolder  = 0.4
)

type (
	// The ranker only needs the search slice of each service, so it
	// declares the narrow surfaces it consumes.
	ArticleSearcher interface {
		SearchArticles(ctx context.Context, term string, limit int) ([]quill.Article, error)
	}
	FeedSearcher interface {
		SearchFeeds(ctx context.Context, term string, limit int) ([]quill.Feed, error)
	}
	TaxonomyLister interface {
		AllTags(ctx context.Context) ([]quill.Tag, error)
		AllFolders(ctx context.Context) ([]quill.Folder, error)
	}
)

// Service runs the per-type pipelines and performs the cross-type merge.
type Service struct {
	articles ArticleSearcher
	feeds    FeedSearcher
	taxonomy TaxonomyLister
}

func New(articles ArticleSearcher, feeds FeedSearcher, taxonomy TaxonomyLister) *Service {
	return &Service{
		articles: articles,
		feeds:    feeds,
		taxonomy: taxonomy,
	}
}

// UniversalSearch fans out to the four entity types, normalizes and weighs
// each type's scores, and returns at most maxHits merged hits.
//
// A failing entity type is logged and dropped; the remaining types still
// produce a result. The merge order is fixed (feeds, articles, tags,
// folders), so output is deterministic regardless of completion order.
func (s *Service) UniversalSearch(ctx context.Context, term string) ([]Hit, error) {
	if !quill.SearchActive(term) {
		return []Hit{}, nil
	}

	var (
		feedHits    []Hit
		articleHits []Hit
		tagHits     []Hit
		folderHits  []Hit
	)

	// errgroup carries the caller's cancellation into each sub-query; the
	// goroutines swallow their own failures so one type cannot cancel its
	// siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feedHits = s.searchFeeds(gctx, term)
		return nil
	})
	g.Go(func() error {
		articleHits = s.searchArticles(gctx, term)
		return nil
	})
	g.Go(func() error {
		tagHits = s.searchTags(gctx, term)
		return nil
	})
	g.Go(func() error {
		folderHits = s.searchFolders(gctx, term)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Hit, 0, len(feedHits)+len(articleHits)+len(tagHits)+len(folderHits))
	merged = append(merged, weigh(normalize(feedHits), weightFeed)...)
	merged = append(merged, weigh(normalize(articleHits), weightArticle)...)
	merged = append(merged, weigh(normalize(tagHits), weightTag)...)
	merged = append(merged, weigh(normalize(folderHits), weightFolder)...)

	// Stable: equal scores keep the insertion order above, so repeated
	// identical requests reproduce the same list.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > maxHits {
		merged = merged[:maxHits]
	}

	return merged, nil
}

func (s *Service) searchArticles(ctx context.Context, term string) []Hit {
	ctx = logger.Ctx(ctx, slog.String("entity", string(HitTypeArticle)))

	articles, err := s.articles.SearchArticles(ctx, term, perTypeLimit)
	if err != nil {
		slog.ErrorContext(ctx, "entity search failed, dropping its results", "error", err)
		return nil
	}

	hits := make([]Hit, 0, len(articles))
	for _, a := range articles {
		hits = append(hits, Hit{
			Type:    HitTypeArticle,
			ID:      a.ID,
			Title:   a.Title,
			Score:   a.Relevance,
			Payload: a,
		})
	}

	return hits
}

func (s *Service) searchFeeds(ctx context.Context, term string) []Hit {
	ctx = logger.Ctx(ctx, slog.String("entity", string(HitTypeFeed)))

	feeds, err := s.feeds.SearchFeeds(ctx, term, perTypeLimit)
	if err != nil {
		slog.ErrorContext(ctx, "entity search failed, dropping its results", "error", err)
		return nil
	}

	hits := make([]Hit, 0, len(feeds))
	for _, f := range feeds {
		var title string
		if f.Title != nil {
			title = *f.Title
		}
		if title == "" {
			title = f.URL
		}
		hits = append(hits, Hit{
			Type:    HitTypeFeed,
			ID:      f.ID,
			Title:   title,
			Score:   f.Relevance,
			Payload: f,
		})
	}

	return hits
}

func (s *Service) searchTags(ctx context.Context, term string) []Hit {
	ctx = logger.Ctx(ctx, slog.String("entity", string(HitTypeTag)))

	tags, err := s.taxonomy.AllTags(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "entity search failed, dropping its results", "error", err)
		return nil
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}

	hits := make([]Hit, 0)
	for _, m := range fuzzyMatch(term, names) {
		t := tags[m.Index]
		hits = append(hits, Hit{
			Type:    HitTypeTag,
			ID:      t.ID,
			Title:   t.Name,
			Score:   float64(m.Score),
			Payload: t,
		})
	}

	return hits
}

func (s *Service) searchFolders(ctx context.Context, term string) []Hit {
	ctx = logger.Ctx(ctx, slog.String("entity", string(HitTypeFolder)))

	folders, err := s.taxonomy.AllFolders(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "entity search failed, dropping its results", "error", err)
		return nil
	}

	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}

	hits := make([]Hit, 0)
	for _, m := range fuzzyMatch(term, names) {
		f := folders[m.Index]
		hits = append(hits, Hit{
			Type:    HitTypeFolder,
			ID:      f.ID,
			Title:   f.Name,
			Score:   float64(m.Score),
			Payload: f,
		})
	}

	return hits
}

// fuzzyMatch ranks names against the term, capped at perTypeLimit. Tag and
// folder sets are small, so in-memory matching is cheaper than an index.
func fuzzyMatch(term string, names []string) fuzzy.Matches {
	matches := fuzzy.Find(term, names)
	if len(matches) > perTypeLimit {
		matches = matches[:perTypeLimit]
	}
	return matches
}

// normalize rescales one type's raw scores to [0, 1] via min-max. When
// every candidate ties (max == min), scores are clamped into range instead
// of divided, so a degenerate distribution never produces NaN.
func normalize(hits []Hit) []Hit {
	if len(hits) == 0 {
		return hits
	}

	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}

	for i := range hits {
		if max > min {
			hits[i].Score = (hits[i].Score - min) / (max - min)
		} else {
			hits[i].Score = clamp01(hits[i].Score)
		}
	}

	return hits
}

func weigh(hits []Hit, weight float64) []Hit {
	for i := range hits {
		hits[i].Score *= weight
	}
	return hits
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

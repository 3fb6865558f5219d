package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/quill/internal/quill"
)

type fakeArticles struct {
	articles []quill.Article
	err      error
}

func (f fakeArticles) SearchArticles(_ context.Context, _ string, limit int) ([]quill.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.articles) > limit {
		return f.articles[:limit], nil
	}
	return f.articles, nil
}

type fakeFeeds struct {
	feeds []quill.Feed
	err   error
}

func (f fakeFeeds) SearchFeeds(_ context.Context, _ string, limit int) ([]quill.Feed, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.feeds) > limit {
		return f.feeds[:limit], nil
	}
	return f.feeds, nil
}

type fakeTaxonomy struct {
	tags       []quill.Tag
	folders    []quill.Folder
	tagsErr    error
	foldersErr error
}

func (f fakeTaxonomy) AllTags(context.Context) ([]quill.Tag, error) {
	return f.tags, f.tagsErr
}

func (f fakeTaxonomy) AllFolders(context.Context) ([]quill.Folder, error) {
	return f.folders, f.foldersErr
}

func feedWithTitle(id, title string, relevance float64) quill.Feed {
	return quill.Feed{ID: id, Title: &title, URL: "https://example.com/" + id, Relevance: relevance}
}

func TestUniversalSearch_InactiveTerms(t *testing.T) {
	svc := New(
		fakeArticles{err: errors.New("should not be called")},
		fakeFeeds{err: errors.New("should not be called")},
		fakeTaxonomy{},
	)

	for _, term := range []string{"", "   ", "*"} {
		hits, err := svc.UniversalSearch(context.Background(), term)
		require.NoError(t, err)
		assert.Empty(t, hits)
		assert.NotNil(t, hits)
	}
}

func TestUniversalSearch_MergesAllTypes(t *testing.T) {
	svc := New(
		fakeArticles{articles: []quill.Article{
			{ID: "art-1", Title: "go generics in practice", Relevance: 4.2},
		}},
		fakeFeeds{feeds: []quill.Feed{
			feedWithTitle("feed-1", "Go Blog", 3.1),
		}},
		fakeTaxonomy{
			tags:    []quill.Tag{{ID: "tag-1", Name: "golang"}},
			folders: []quill.Folder{{ID: "fold-1", Name: "go reading"}},
		},
	)

	hits, err := svc.UniversalSearch(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, hits, 4)

	byType := map[HitType]Hit{}
	for _, h := range hits {
		byType[h.Type] = h
	}
	require.Len(t, byType, 4)

	// Each type's single candidate normalizes to its clamped raw score,
	// times its weight; the feed weight dominates.
	assert.Equal(t, HitTypeFeed, hits[0].Type)
	assert.Equal(t, weightFeed*1.0, byType[HitTypeFeed].Score)
	assert.Equal(t, weightArticle*1.0, byType[HitTypeArticle].Score)
}

func TestUniversalSearch_DegradedWhenOneTypeFails(t *testing.T) {
	svc := New(
		fakeArticles{articles: []quill.Article{
			{ID: "art-1", Title: "hello", Relevance: 2.0},
		}},
		fakeFeeds{err: errors.New("fts index corrupted")},
		fakeTaxonomy{foldersErr: errors.New("db locked")},
	)

	hits, err := svc.UniversalSearch(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, HitTypeArticle, hits[0].Type)
	assert.Equal(t, "art-1", hits[0].ID)
}

func TestUniversalSearch_WeightOrdering(t *testing.T) {
	// Both types normalize their best candidate to 1.0; the weights alone
	// decide the final order.
	svc := New(
		fakeArticles{articles: []quill.Article{
			{ID: "art-1", Title: "news", Relevance: 99},
			{ID: "art-2", Title: "news again", Relevance: 1},
		}},
		fakeFeeds{feeds: []quill.Feed{
			feedWithTitle("feed-1", "news feed", 0.2),
			feedWithTitle("feed-2", "news weekly", 0.1),
		}},
		fakeTaxonomy{},
	)

	hits, err := svc.UniversalSearch(context.Background(), "news")
	require.NoError(t, err)
	require.Len(t, hits, 4)

	assert.Equal(t, "feed-1", hits[0].ID)
	assert.Equal(t, "art-1", hits[1].ID)
}

func TestUniversalSearch_CapsResults(t *testing.T) {
	var articles []quill.Article
	for i := 0; i < 30; i++ {
		articles = append(articles, quill.Article{
			ID:        fmt.Sprintf("art-%02d", i),
			Title:     "match",
			Relevance: float64(30 - i),
		})
	}
	var feeds []quill.Feed
	for i := 0; i < 30; i++ {
		feeds = append(feeds, feedWithTitle(fmt.Sprintf("feed-%02d", i), "match", float64(30-i)))
	}

	svc := New(fakeArticles{articles: articles}, fakeFeeds{feeds: feeds}, fakeTaxonomy{})

	hits, err := svc.UniversalSearch(context.Background(), "match")
	require.NoError(t, err)
	assert.Len(t, hits, maxHits)
}

func TestUniversalSearch_Deterministic(t *testing.T) {
	svc := New(
		fakeArticles{articles: []quill.Article{
			{ID: "art-1", Title: "alpha", Relevance: 1},
			{ID: "art-2", Title: "beta", Relevance: 1},
		}},
		fakeFeeds{feeds: []quill.Feed{
			feedWithTitle("feed-1", "alpha feed", 1),
			feedWithTitle("feed-2", "beta feed", 1),
		}},
		fakeTaxonomy{},
	)

	first, err := svc.UniversalSearch(context.Background(), "alpha")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := svc.UniversalSearch(context.Background(), "alpha")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("rescales to unit interval", func(t *testing.T) {
		hits := normalize([]Hit{{Score: 10}, {Score: 20}, {Score: 15}})

		assert.Equal(t, 0.0, hits[0].Score)
		assert.Equal(t, 1.0, hits[1].Score)
		assert.Equal(t, 0.5, hits[2].Score)
	})

	t.Run("all equal clamps instead of dividing", func(t *testing.T) {
		hits := normalize([]Hit{{Score: 7}, {Score: 7}})

		for _, h := range hits {
			assert.False(t, math.IsNaN(h.Score))
			assert.Equal(t, 1.0, h.Score)
		}
	})

	t.Run("single negative score clamps to zero", func(t *testing.T) {
		hits := normalize([]Hit{{Score: -3}})
		assert.Equal(t, 0.0, hits[0].Score)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, normalize(nil))
	})
}

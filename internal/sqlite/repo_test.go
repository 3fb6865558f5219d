package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/quillfeed/quill/internal/migrations"
	"github.com/quillfeed/quill/internal/quill"
)

func newTestRepo(t *testing.T) (Repo, *sqlx.DB) {
	t.Helper()

	require.NoError(t, RegisterFunctions())

	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "quill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))

	return New(dbx), dbx
}

func seedFeed(t *testing.T, dbx *sqlx.DB, f quill.Feed) quill.Feed {
	t.Helper()

	if f.ID == "" {
		f.ID = uuid.NewString() + "-fd"
	}
	if f.URL == "" {
		f.URL = "https://example.com/" + f.ID
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	const q = `INSERT INTO feeds (id, url, title, description, pinned, refreshed_at, created_at)
	VALUES (:id, :url, :title, :description, :pinned, :refreshed_at, :created_at);`
	_, err := dbx.NamedExecContext(context.Background(), q, f)
	require.NoError(t, err)

	return f
}

func seedSubscription(t *testing.T, dbx *sqlx.DB, s quill.Subscription) quill.Subscription {
	t.Helper()

	if s.ID == "" {
		s.ID = uuid.NewString() + "-sub"
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	const q = `INSERT INTO subscriptions (id, feed_id, folder_id, created_at)
	VALUES (:id, :feed_id, :folder_id, :created_at);`
	_, err := dbx.NamedExecContext(context.Background(), q, s)
	require.NoError(t, err)

	return s
}

func seedFolder(t *testing.T, dbx *sqlx.DB, id, name string) quill.Folder {
	t.Helper()

	f := quill.Folder{ID: id, Name: name, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	const q = `INSERT INTO folders (id, name, created_at) VALUES (:id, :name, :created_at);`
	_, err := dbx.NamedExecContext(context.Background(), q, f)
	require.NoError(t, err)

	return f
}

func seedTag(t *testing.T, dbx *sqlx.DB, id, name string) quill.Tag {
	t.Helper()

	tag := quill.Tag{ID: id, Name: name, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	const q = `INSERT INTO tags (id, name, created_at) VALUES (:id, :name, :created_at);`
	_, err := dbx.NamedExecContext(context.Background(), q, tag)
	require.NoError(t, err)

	return tag
}

func tagSubscription(t *testing.T, dbx *sqlx.DB, subscriptionID, tagID string) {
	t.Helper()

	const q = `INSERT INTO subscription_tags (subscription_id, tag_id) VALUES (?, ?);`
	_, err := dbx.ExecContext(context.Background(), q, subscriptionID, tagID)
	require.NoError(t, err)
}

// seedArticle inserts an article plus its full-text content. The guid
// defaults to the id; ingestion normally supplies both.
func seedArticle(t *testing.T, dbx *sqlx.DB, a quill.Article, content string) quill.Article {
	t.Helper()

	if a.ID == "" {
		a.ID = uuid.NewString() + "-art"
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	const q = `INSERT INTO articles (id, feed_id, guid, title, url, summary, content, is_read, read_later, published_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := dbx.ExecContext(context.Background(), q,
		a.ID, a.FeedID, a.ID, a.Title, a.URL, a.Summary, content, a.IsRead, a.ReadLater, a.PublishedAt, a.CreatedAt)
	require.NoError(t, err)

	return a
}

func timePtr(t time.Time) *time.Time {
	return &t
}

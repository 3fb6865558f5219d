// Package sqlite implements the retrieval engine's read side over a sqlite
// database: filtered candidate sets, relevance scoring, and keyset or
// offset pagination.
package sqlite

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"github.com/quillfeed/quill/internal/quill"
)

// Ensure Repo implements the service interfaces.
var (
	_ quill.ArticleService  = (*Repo)(nil)
	_ quill.FeedService     = (*Repo)(nil)
	_ quill.TaxonomyService = (*Repo)(nil)
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

var registerOnce sync.Once

// RegisterFunctions installs the title_sim scalar function on the sqlite
// driver. It must run before any connection that executes a search query
// is opened; callers typically invoke it right before sqlx.Open.
func RegisterFunctions() error {
	var err error
	registerOnce.Do(func() {
		err = sqlite.RegisterDeterministicScalarFunction(
			"title_sim", 2,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				return trigramSimilarity(argString(args[0]), argString(args[1])), nil
			},
		)
	})
	if err != nil {
		return fmt.Errorf("error registering title_sim: %w", err)
	}

	return nil
}

func argString(v driver.Value) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// trimPage applies the over-fetch-by-one convention: queries ask for
// limit+1 rows, and the extra row only signals that another page exists.
func trimPage[T any](rows []T, limit int) ([]T, bool) {
	if len(rows) > limit {
		return rows[:limit:limit], true
	}
	return rows, false
}

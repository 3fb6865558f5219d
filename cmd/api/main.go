// Quill-API serves the read side of the feed service: filtered article
// listings, feed listings, and the unified cross-entity search.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"
	_ "modernc.org/sqlite"

	"github.com/quillfeed/quill/internal/api"
	"github.com/quillfeed/quill/internal/migrations"
	"github.com/quillfeed/quill/internal/quill"
	"github.com/quillfeed/quill/internal/search"
	qsqlite "github.com/quillfeed/quill/internal/sqlite"
	"github.com/quillfeed/quill/logger"
)

type config struct {
	Database string `env:"DATABASE, required"`

	Port       int    `env:"PORT, default=4444"`
	CorsHeader string `env:"CORS_HEADER, default=*"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	l := slog.New(logger.NewContextHandler(slog.NewTextHandler(os.Stdout, nil)))
	slog.SetDefault(l)

	// The relevance scorer needs title_sim available on every connection.
	if err := qsqlite.RegisterFunctions(); err != nil {
		log.Fatalf("error registering sqlite functions: %s", err)
	}

	// Connect to the sqlite db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Retry until the database file is actually reachable (it may live on
	// a volume that attaches after the process starts).
	if err := retry.Fibonacci(ctx, 1*time.Second, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		log.Fatalf("error reaching database: %s", err)
	}

	// Run all migrations
	if err := migrations.Run(dbx); err != nil {
		log.Fatalf("error running migrations: %s", err)
	}

	repo := qsqlite.New(dbx)

	// Start the application
	fx.New(
		fx.Supply(
			api.ServerConfig{
				Port:       cfg.Port,
				CorsHeader: cfg.CorsHeader,
			},
			fx.Annotate(repo, fx.As(new(quill.ArticleService))),
			fx.Annotate(repo, fx.As(new(quill.FeedService))),
			fx.Annotate(repo, fx.As(new(search.ArticleSearcher))),
			fx.Annotate(repo, fx.As(new(search.FeedSearcher))),
			fx.Annotate(repo, fx.As(new(search.TaxonomyLister))),
		),
		search.Module,
		api.Module,
	).Run()
}

// Package api exposes the retrieval engine over HTTP: article listings,
// feed listings, unified search, and the reader view.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"

	qerrs "github.com/quillfeed/quill/internal/errors"
	"github.com/quillfeed/quill/internal/quill"
	"github.com/quillfeed/quill/internal/search"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one. Domain
	// sentinels keep their taxonomy: a bad cursor is a validation failure,
	// never a silent first page.
	sErr := &qerrs.Error{}
	if !errors.As(err, &sErr) {
		switch {
		case errors.Is(err, quill.ErrBadCursor):
			sErr = qerrs.E(err, http.StatusBadRequest)
		case errors.Is(err, quill.ErrNotFound):
			sErr = qerrs.E(err, http.StatusNotFound)
		default:
			slog.ErrorContext(r.Context(), "unhandled error", "error", err)
			sErr = qerrs.E(http.StatusInternalServerError, "internal server error")
		}
	}

	if err := writeJSON(w, sErr.Status, sErr); err != nil {
		slog.ErrorContext(r.Context(), "error writing response", "error", err)
	}
}

// errRouter is a newtype around a mux router that allows attaching handlers that return errors.
type errRouter struct {
	*mux.Router
}

func (r errRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}

type (
	// Server serves the read side of the feed service: listings, search,
	// and reader content. It owns no mutations.
	Server struct {
		*http.Server

		fetchClient *http.Client
		readerCache *lru.Cache[string, ReaderResp]

		articles quill.ArticleService
		feeds    quill.FeedService
		searcher *search.Service
	}

	ServerConfig struct {
		Port       int
		CorsHeader string
	}
)

func NewServer(config ServerConfig, articles quill.ArticleService, feeds quill.FeedService, searcher *search.Service) *Server {
	var (
		r        = errRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, ReaderResp](1024)
	)

	srvr := Server{
		fetchClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		readerCache: cache,
		articles:    articles,
		feeds:       feeds,
		searcher:    searcher,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsHeader}),
				handlers.AllowCredentials(),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(accessLogMiddleware) // Log everything

	// Listings
	r.HandleFuncE("/api/articles", srvr.getArticles).Methods(http.MethodGet)
	r.HandleFuncE("/api/feeds", srvr.getFeeds).Methods(http.MethodGet)

	// Unified search
	r.HandleFuncE("/api/search", srvr.getSearch).Methods(http.MethodGet)

	// Reader view
	r.HandleFuncE("/api/articles/{articleID}/content", srvr.getArticleContent).Methods(http.MethodGet)

	slog.Debug("configured api server", "port", config.Port)

	return &srvr
}

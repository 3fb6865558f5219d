// Package logger wires request-scoped attributes into slog output.
//
// Handlers stash attributes (request id, entity type of a sub-search, and
// the like) on the context once; every log line emitted under that context
// then carries them without threading loggers through call sites.
package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const attrKey contextKey = "attrKey"

// ContextHandler implements [slog.Handler] and adds to the log record any
// attributes previously attached to the context via [Ctx].
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler creates a ContextHandler with `handler` as the base.
func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{Handler: handler}
}

// Handle implements [slog.Handler].
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		return h.Handler.Handle(ctx, record)
	}

	record.AddAttrs(attrs...)

	return h.Handler.Handle(ctx, record)
}

// Ctx returns a context carrying the given attributes in addition to any
// already attached. The original context is left untouched.
func Ctx(ctx context.Context, toAppend ...slog.Attr) context.Context {
	attrs, ok := ctx.Value(attrKey).([]slog.Attr)
	if !ok {
		attrs = []slog.Attr{}
	}

	attrs = append(attrs[:len(attrs):len(attrs)], toAppend...)
	return context.WithValue(ctx, attrKey, attrs)
}

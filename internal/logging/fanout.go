package logging

import (
	"context"
	"log/slog"
)

// FanoutHandler duplicates every record to each child handler. Moderation
// decisions are logged both to stdout and to the system_logs table; a failing
// child must not starve the other of records, so delivery continues past
// errors and the first one is reported.
type FanoutHandler struct {
	children []slog.Handler
}

func NewFanout(children ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{children: children}
}

// Enabled reports whether any child wants records at this level.
func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.children {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f.children {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(f.children))
	for i, h := range f.children {
		children[i] = h.WithAttrs(attrs)
	}
	return &FanoutHandler{children: children}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(f.children))
	for i, h := range f.children {
		children[i] = h.WithGroup(name)
	}
	return &FanoutHandler{children: children}
}

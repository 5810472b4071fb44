package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type countingHandler struct {
	records int
	err     error
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *countingHandler) Handle(context.Context, slog.Record) error {
	h.records++
	return h.err
}
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

func TestFanoutDeliversPastFailingChild(t *testing.T) {
	failing := &countingHandler{err: errors.New("sink down")}
	healthy := &countingHandler{}
	fanout := NewFanout(failing, healthy)

	record := slog.NewRecord(time.Now(), slog.LevelError, "queue item resolved", 0)
	err := fanout.Handle(context.Background(), record)

	if healthy.records != 1 {
		t.Errorf("healthy child records = %d, want 1 despite sibling failure", healthy.records)
	}
	if !errors.Is(err, failing.err) {
		t.Errorf("Handle() error = %v, want the child failure surfaced", err)
	}
}

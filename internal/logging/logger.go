package logging

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide logger: JSON records on stdout at info
// level. The Postgres handler is layered on later, once the database
// connection exists, by swapping in a fanout via slog.SetDefault.
func Setup() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
}

package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/clac/log"
)

func Example_basic() {
	logger := log.Make(os.Stderr)
	logger.Warn("prelude not found", slog.String("file", "std.clac"))
}

func Example_configuration() {
	logger := log.Make(os.Stderr,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Trace("lex complete", slog.Int("token_count", 7))
}

func Example_jsonFormat() {
	logger := log.Make(os.Stderr,
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false))

	logger.Error("evaluation failed", slog.String("kind", "DivisionByZero"))
}

func Example_withAttributes() {
	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
	logger = logger.With(slog.String("command", "repl"))

	logger.Debug("history loaded", slog.Int("entries", 12))
}

func Example_withContext() {
	type sessionKey struct{}

	ctx := context.WithValue(context.Background(), sessionKey{}, "s-1")

	logger := log.Make(os.Stderr, log.WithLevel(log.LevelInfo))
	logger.InfoContext(ctx, "session started")
}

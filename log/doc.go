// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is configured at creation time with functional options and is
// safe to copy. Its zero value discards everything, so components such as
// the interpreter can hold one unconditionally.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON))
//	logger.TraceContext(ctx, "lex complete", slog.Int("token_count", n))
//
// # Default Logger
//
// The package-level functions ([Debug], [InfoContext], ...) write through a
// default logger on stderr, reconfigured with [Config]. The command line
// flags --log-level, --log-format, --log-time-layout, --log-caller and
// --log-pretty all end up there.
//
// Context-unaware functions call their context-aware counterparts with
// [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is what the interpreter uses for
// per-statement and cache diagnostics. [DefaultLevel] is [LevelWarn].
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON], each with an optional colorized
// pretty variant enabled by [WithPretty].
package log

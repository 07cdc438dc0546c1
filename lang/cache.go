package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// tokenCache stores lexed token slices keyed by source hash.
//
// Only tokens are cached. Every parse builds a new tree so that each function
// literal gets its own definition identity.
var tokenCache sync.Map

// cacheLimit bounds the number of cached sources. Storing one more empties
// the cache.
var cacheLimit int64 = 4096

// cacheLen counts the sources stored since the cache was last emptied.
var cacheLen atomic.Int64

// state tracks the lexing state for one source.
type state struct {
	once   sync.Once
	source string
	toks   []Token
	err    error
}

// Tokenize lexes s. Results are cached process-wide; the returned slice is
// shared and must not be modified.
func Tokenize(ctx context.Context, s string, opts ...Option) ([]Token, error) {
	var o options

	applyOptions(&o, opts...)

	return tokenize(ctx, s, &o)
}

func tokenize(ctx context.Context, s string, o *options) ([]Token, error) {
	if o.noCache {
		return lex(s)
	}

	hash := xxh3.HashString(s)
	key := strconv.FormatUint(hash, 36)

	entry := &state{source: s}
	value, cacheHit := tokenCache.LoadOrStore(key, entry)

	cached, ok := value.(*state)
	if !ok || cached.source != s {
		// Hash collision: lex without caching.
		return lex(s)
	}

	if !cacheHit && cacheLen.Add(1) > cacheLimit {
		ClearCache()

		o.logger.TraceContext(ctx, "cache cleared",
			slog.Int64("limit", cacheLimit))
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	cached.once.Do(func() {
		cached.toks, cached.err = lex(s)

		o.logger.TraceContext(ctx, "lex complete",
			slog.Int("source_bytes", len(s)),
			slog.Int("token_count", len(cached.toks)),
		)
	})

	return cached.toks, cached.err
}

// ParseReader reads all of r and parses it as a Clac program.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*AST, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	var o options

	applyOptions(&o, opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// ClearCache removes all cached token slices.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	tokenCache.Clear()
	cacheLen.Store(0)
}

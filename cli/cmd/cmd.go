package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/clac/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Environment describes how every command builds its interpreter: the
// expression builtins added to the default registry, and the prelude files
// evaluated into the global frame before any user input.
type Environment struct {
	Builtins    []lang.ExprBuiltin
	Prelude     []string
	PreludePath []string
}

type environmentKey struct{}

// WithEnvironment returns a new context.Context containing env.
func WithEnvironment(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, environmentKey{}, env)
}

func environmentFrom(ctx context.Context) Environment {
	env, _ := ctx.Value(environmentKey{}).(Environment)

	return env
}

type (
	sourceFilesKey struct{}
	sourceFiles    struct {
		read     []io.Reader
		all      io.Reader
		stdin    io.Reader
		hasStdin bool
	}

	// SourceFiles reads the concatenation of every source given with --file.
	SourceFiles interface {
		IsZero() bool
		Stdin() io.Reader
		io.Reader
		io.WriterTo
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

// Stdin returns the stdin reader if stdin was included as a source, or nil
// otherwise.
func (s *sourceFiles) Stdin() io.Reader {
	if s.hasStdin {
		return s.stdin
	}

	return nil
}

func (s *sourceFiles) reader() io.Reader {
	if s.all == nil {
		readers := s.read
		if s.hasStdin {
			readers = append(readers, s.stdin)
		}

		s.all = io.MultiReader(readers...)
	}

	return s.all
}

// Read implements io.Reader by reading from all source files in order,
// including stdin if present.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	return s.reader().Read(p)
}

// WriteTo implements io.WriterTo by writing all source files to w in order,
// including stdin if present.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	return io.Copy(w, s.reader())
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing an [io.Reader] that
// reads from the given source files.
//
// The function deduplicates readers by resolving symlinks and comparing device/
// inode pairs. All occurrences of "-" are replaced with a single stdin reader.
// The stdin reader is placed last so it reads after all regular files.
//
// Sources that cannot be opened are returned as errors, and the remaining
// sources are still stored.
func WithSourceFiles(
	ctx context.Context,
	sources []string,
) (context.Context, []error) {
	files, errs := buildSourceFiles(os.Stdin, sources)

	return context.WithValue(ctx, sourceFilesKey{}, files), errs
}

// buildSourceFiles constructs a SourceFiles from the given source paths.
func buildSourceFiles(stdin *os.File, sources []string) (SourceFiles, []error) {
	if len(sources) == 0 {
		return nil, nil
	}

	var (
		srcs sourceFiles
		errs []error
	)

	srcs.read = make([]io.Reader, 0, len(sources))
	srcs.stdin = stdin
	seen := make(map[fileKey]struct{})

	var (
		stdinKey fileKey
		stdinOK  bool
	)

	if info, err := stdin.Stat(); err == nil {
		stdinKey, stdinOK = makeFileKey(info)
	}

	for _, src := range sources {
		if src == stdinSource {
			srcs.hasStdin = true

			continue
		}

		reader, err := openUniqueFile(src, seen)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if reader != nil {
			srcs.read = append(srcs.read, reader)
		}
	}

	// Stdin may also have been named explicitly, e.g. /dev/stdin.
	if _, ok := seen[stdinKey]; ok && stdinOK {
		srcs.hasStdin = true
	}

	if srcs.IsZero() {
		return nil, errs
	}

	return &srcs, errs
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// A duplicate yields a nil reader and nil error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// sourceFilesFrom retrieves the SourceFiles stored in ctx by WithSourceFiles.
// Returns nil if none were stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}

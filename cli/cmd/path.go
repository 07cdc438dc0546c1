package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/clac/log"
	"github.com/ardnew/clac/pkg"
)

// preludeExt is appended to prelude names given without an extension.
const preludeExt = ".clac"

// searchPath returns the directories searched for prelude files, in order:
// the entries of $CLAC_PATH, then the configured prelude paths, then the
// configuration directory. Directories that do not exist are dropped, as
// are repeats.
func searchPath(configDir string, extra ...string) []string {
	prefix := filepath.SplitList(os.Getenv(pkg.PathEnv))
	prefix = append(prefix, extra...)

	joined := mung.Make(
		mung.WithSubjectItems(configDir),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(joined) {
		if dir = strings.TrimSpace(dir); dir == "" {
			continue
		}

		if dir = filepath.Clean(dir); isDir(dir) && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// findPrelude resolves a prelude name to a file. Names containing a path
// separator are used as given; other names are looked up in each of dirs,
// first verbatim and then with the ".clac" extension.
func findPrelude(name string, dirs []string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) || filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", pkg.ErrPreludeNotFound.Wrap(err)
		}

		return name, nil
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+preludeExt)
	}

	for _, dir := range dirs {
		for _, c := range candidates {
			path := filepath.Join(dir, c)

			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				log.Trace("prelude resolved",
					slog.String("name", name),
					slog.String("path", path))

				return path, nil
			}

			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", pkg.ErrPreludeNotFound.Wrap(err)
			}
		}
	}

	return "", pkg.ErrPreludeNotFound.Wrapf("%s (searched %s)",
		name, strings.Join(dirs, string(os.PathListSeparator)))
}

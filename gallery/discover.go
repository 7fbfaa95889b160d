package gallery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Discover walks root and returns the root-relative,
// slash-separated paths of files whose base name matches
// one of cfg.Patterns. Directories named in cfg.Exclude
// are not entered, and files named in it are skipped.
// A symlinked root is resolved before walking; symlinked
// directories below it are not followed. The result is
// in walk order; use Prepare to sort it.
func Discover(root string, cfg Config) ([]string, error) {
	const errCtx = "discovering images"

	matchers, err := cfg.matchers()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	excluded := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		excluded[name] = struct{}{}
	}

	var found []string

	walkErr := filepath.WalkDir(root, func(
		pa string,
		de fs.DirEntry,
		err error,
	) error {
		if err != nil {
			return err
		}

		if pa == root {
			return nil
		}

		if _, ok := excluded[de.Name()]; ok {
			if de.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if de.IsDir() {
			return nil
		}

		if !matchesAny(matchers, de.Name()) {
			return nil
		}

		// A symlink named like an image may point at a
		// directory.
		if de.Type()&fs.ModeSymlink != 0 {
			fi, statErr := os.Stat(pa)
			if statErr != nil || fi.IsDir() {
				return nil //nolint:nilerr // dangling links are not images
			}
		}

		rel, err := filepath.Rel(root, pa)
		if err != nil {
			return err
		}

		found = append(found, filepath.ToSlash(rel))

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, walkErr)
	}

	return found, nil
}

func matchesAny(matchers []glob.Glob, name string) bool {
	for _, m := range matchers {
		if m.Match(name) {
			return true
		}
	}

	return false
}

// hasExcludedSegment reports whether any slash-separated
// component of rel is in exclude.
func hasExcludedSegment(rel string, exclude []string) bool {
	for _, seg := range strings.Split(rel, "/") {
		for _, ex := range exclude {
			if seg == ex {
				return true
			}
		}
	}

	return false
}

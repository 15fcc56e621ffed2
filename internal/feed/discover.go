package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the regular files under dir matching pattern, sorted by
// path. Rotated logs (access.log, access.log.1, access.log.2.gz) therefore
// come out in a stable order.
func Discover(dir, pattern string) ([]string, error) {
	return Expand([]string{filepath.Join(dir, pattern)})
}

// Expand resolves each glob pattern (doublestar syntax, ** included) and
// returns the matching regular files sorted and de-duplicated. A pattern
// without glob characters names a file directly and is kept even when it
// does not exist, so that opening it reports the failure. An existing file
// whose name contains glob characters is taken literally.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !hasMeta(pattern) || isFile(pattern) {
			clean := filepath.Clean(pattern)
			if !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		for _, m := range matches {
			clean := filepath.Clean(m)
			if !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a URL maps to no fixture on disk.
var ErrNotFound = errors.New("fixture not found")

// Store serves page content from local HTML fixtures. URLs like
// http://localhost/filename.html map to <dir>/filename.html; no network
// access ever happens.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Fetch resolves a URL to a fixture file and returns its content. An
// empty path resolves to safe_store.html, and a missing .html extension
// is appended.
func (s *Store) Fetch(url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("url cannot be empty")
	}

	name := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		name = url[i+1:]
	}
	if name == "" {
		name = "safe_store.html"
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("read fixture %s: %w", path, err)
	}
	return string(data), nil
}

// List returns the names of all HTML fixtures in the store, sorted.
func (s *Store) List() []string {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.html"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names
}

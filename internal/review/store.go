// Package review persists review output and builds analysis prompts.
package review

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patchkit/patchctl/internal/resolve"
)

const banner = "================================================================================"

// Store keeps the latest review per patch under <root>/reviews so a re-run
// can compare the new patch revision against prior feedback.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir; an empty dir means the current
// working directory.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Identifier derives the filesystem-safe review identifier for a URL.
// Unclassifiable URLs fall back to a hash so every URL stores somewhere.
func Identifier(url string) string {
	if src := resolve.ClassifyPatchSource(url); src != nil {
		return src.Identifier()
	}
	return fmt.Sprintf("review-%x", md5.Sum([]byte(url)))[:len("review-")+8]
}

func (s *Store) path(url string) (string, error) {
	root := s.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = cwd
	}
	dir := filepath.Join(root, "reviews")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reviews directory: %w", err)
	}
	return filepath.Join(dir, Identifier(url)+"-latest.txt"), nil
}

// LoadPrevious returns the stored review for a URL and when it was written.
// ok is false when no review exists.
func (s *Store) LoadPrevious(url string) (content string, when time.Time, ok bool) {
	path, err := s.path(url)
	if err != nil {
		return "", time.Time{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return string(data), time.Time{}, true
	}
	return string(data), info.ModTime(), true
}

// Save writes review output for a URL, replacing any prior review, and
// returns the file path.
func (s *Store) Save(url, output string) (string, error) {
	path, err := s.path(url)
	if err != nil {
		return "", err
	}

	header := fmt.Sprintf("Review generated: %s\nPatch URL: %s\n\n%s\n\n",
		time.Now().Format("2006-01-02 15:04:05"), url, banner)

	if err := os.WriteFile(path, []byte(header+output), 0o644); err != nil {
		return "", fmt.Errorf("saving review: %w", err)
	}
	return path, nil
}

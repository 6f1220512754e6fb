package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/patchkit/patchctl/internal/resolve"
)

// CloneError means no usable local repository could be produced.
type CloneError struct {
	RemoteURL string
	Detail    string
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("cloning %s failed: %s", e.RemoteURL, e.Detail)
}

// Ensure makes sure a local clone of the resolved repository exists under
// baseDir/owner/repo and is as fresh as the network allows. An existing
// clone is fetch-updated only; a failed fetch degrades to a warning since a
// stale clone is still usable. A failed clone is fatal: there is nothing to
// operate on. Calling Ensure twice with the same locator never re-clones.
func Ensure(ctx context.Context, g Git, loc *resolve.Locator, baseDir string) (*Repo, error) {
	base, err := expandHome(baseDir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(base, loc.Owner, loc.Name)

	if hasGitMetadata(path) {
		logrus.Infof("repository already exists at %s, fetching updates", path)
		res, err := g.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		if !res.OK() {
			logrus.Warnf("fetch failed, continuing with possibly stale clone: %s", res.Output())
		}
		return &Repo{Path: path}, nil
	}

	logrus.Infof("cloning %s to %s", loc.RemoteURL, path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	res, err := g.Clone(ctx, loc.RemoteURL, path)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		// A partial clone directory is left in place on purpose: it is
		// the evidence of why the clone failed.
		return nil, &CloneError{RemoteURL: loc.RemoteURL, Detail: res.Output()}
	}

	return &Repo{Path: path}, nil
}

func hasGitMetadata(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

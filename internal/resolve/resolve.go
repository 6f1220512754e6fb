// Package resolve turns a code-hosting URL into a repository locator and a
// patch source descriptor. It is pure string work: no network, no filesystem.
package resolve

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Locator identifies a repository's remote address and owner/name pair.
type Locator struct {
	RemoteURL string
	Owner     string
	Name      string
}

// PatchSource describes where a patch can be downloaded from. Exactly one
// variant matches a given well-formed URL.
type PatchSource interface {
	// DiffURL returns the endpoint serving the raw unified diff.
	DiffURL() string
	// Identifier returns a filesystem-safe token naming this patch,
	// used for review persistence.
	Identifier() string
}

// GitHubPullRequest is a patch sourced from a GitHub pull request.
type GitHubPullRequest struct {
	Owner  string
	Repo   string
	Number int
}

func (s GitHubPullRequest) DiffURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d.diff", s.Owner, s.Repo, s.Number)
}

func (s GitHubPullRequest) Identifier() string {
	return fmt.Sprintf("%s-%s-pr-%d", s.Owner, s.Repo, s.Number)
}

// GitHubCommit is a patch sourced from a single GitHub commit.
type GitHubCommit struct {
	Owner string
	Repo  string
	SHA   string
}

func (s GitHubCommit) DiffURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s.diff", s.Owner, s.Repo, s.SHA)
}

func (s GitHubCommit) Identifier() string {
	sha := s.SHA
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return fmt.Sprintf("%s-%s-commit-%s", s.Owner, s.Repo, sha)
}

// GitLabMergeRequest is a patch sourced from a GitLab merge request.
type GitLabMergeRequest struct {
	Owner  string
	Repo   string
	Number int
}

func (s GitLabMergeRequest) DiffURL() string {
	return fmt.Sprintf("https://gitlab.com/%s/%s/-/merge_requests/%d.diff", s.Owner, s.Repo, s.Number)
}

func (s GitLabMergeRequest) Identifier() string {
	return fmt.Sprintf("%s-%s-mr-%d", s.Owner, s.Repo, s.Number)
}

// PhabricatorDiff is a patch sourced from a Phabricator differential.
type PhabricatorDiff struct {
	BaseURL string
	DiffID  int
}

func (s PhabricatorDiff) DiffURL() string {
	return fmt.Sprintf("%s/D%d?download=true", s.BaseURL, s.DiffID)
}

func (s PhabricatorDiff) Identifier() string {
	return fmt.Sprintf("mozilla-firefox-phab-D%d", s.DiffID)
}

var (
	githubPullRe   = regexp.MustCompile(`^/([^/]+)/([^/]+)/pull/(\d+)`)
	githubCommitRe = regexp.MustCompile(`^/([^/]+)/([^/]+)/commit/([a-f0-9]+)`)
	gitlabMRRe     = regexp.MustCompile(`^/([^/]+)/([^/]+)/-/merge_requests/(\d+)`)
	phabDiffRe     = regexp.MustCompile(`/D(\d+)`)
)

// mozillaFirefoxLocator is the fixed mapping for Mozilla Phabricator reviews.
// The Phabricator URL does not carry the upstream repository; this tool is
// used on Firefox, so the convention is static.
var mozillaFirefoxLocator = Locator{
	RemoteURL: "https://github.com/mozilla-firefox/firefox/",
	Owner:     "mozilla-firefox",
	Name:      "firefox",
}

// Resolve extracts a repository locator from a hosting-service URL. It
// returns nil for anything it cannot classify; it never guesses.
func Resolve(rawURL string) *Locator {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := u.Hostname()
	switch {
	case strings.Contains(host, "github.com"):
		parts := splitPath(u.Path)
		if len(parts) < 2 {
			return nil
		}
		owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")
		return &Locator{
			RemoteURL: fmt.Sprintf("https://%s/%s/%s.git", host, owner, repo),
			Owner:     owner,
			Name:      repo,
		}
	case strings.Contains(host, "gitlab.com"):
		parts := splitPath(u.Path)
		if len(parts) < 2 {
			return nil
		}
		owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")
		return &Locator{
			RemoteURL: fmt.Sprintf("https://%s/%s/%s.git", host, owner, repo),
			Owner:     owner,
			Name:      repo,
		}
	case strings.Contains(host, "phabricator") && strings.Contains(host, "mozilla"):
		loc := mozillaFirefoxLocator
		return &loc
	}

	return nil
}

// ClassifyPatchSource maps a URL onto the patch source that serves its diff.
// A URL may resolve to a locator yet have no patch source (for example a
// bare https://github.com/owner/repo URL); the caller must treat nil as
// "unsupported", not as an error to ignore.
func ClassifyPatchSource(rawURL string) PatchSource {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	host := u.Hostname()
	switch {
	case strings.Contains(host, "github.com"):
		if m := githubPullRe.FindStringSubmatch(u.Path); m != nil {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				return nil
			}
			return GitHubPullRequest{Owner: m[1], Repo: m[2], Number: n}
		}
		if m := githubCommitRe.FindStringSubmatch(u.Path); m != nil {
			return GitHubCommit{Owner: m[1], Repo: m[2], SHA: m[3]}
		}
	case strings.Contains(host, "gitlab.com"):
		if m := gitlabMRRe.FindStringSubmatch(u.Path); m != nil {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				return nil
			}
			return GitLabMergeRequest{Owner: m[1], Repo: m[2], Number: n}
		}
	case strings.Contains(host, "phabricator") && strings.Contains(host, "mozilla"):
		if m := phabDiffRe.FindStringSubmatch(u.Path); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			return PhabricatorDiff{BaseURL: u.Scheme + "://" + u.Host, DiffID: id}
		}
	}

	return nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

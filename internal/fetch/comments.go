package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/sirupsen/logrus"
	"github.com/xanzy/go-gitlab"

	"github.com/patchkit/patchctl/internal/resolve"
)

const banner = "================================================================================"

// CommentFetcher pulls existing review discussion for a patch source so the
// analysis prompt can take prior feedback into account.
type CommentFetcher struct {
	gh *github.Client
	gl *gitlab.Client
}

// Option configures a CommentFetcher.
type Option func(*CommentFetcher) error

// WithGitHubBaseURL points the GitHub client at an enterprise or test host.
func WithGitHubBaseURL(baseURL string) Option {
	return func(f *CommentFetcher) error {
		gh, err := f.gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return fmt.Errorf("setting github base url: %w", err)
		}
		f.gh = gh
		return nil
	}
}

// WithGitLabBaseURL points the GitLab client at a self-hosted or test host.
func WithGitLabBaseURL(baseURL string) Option {
	return func(f *CommentFetcher) error {
		gl, err := gitlab.NewClient("", gitlab.WithBaseURL(baseURL))
		if err != nil {
			return fmt.Errorf("setting gitlab base url: %w", err)
		}
		f.gl = gl
		return nil
	}
}

// NewCommentFetcher builds a fetcher. Tokens may be empty; unauthenticated
// requests work for public repositories but hit rate limits sooner.
func NewCommentFetcher(githubToken, gitlabToken string, opts ...Option) (*CommentFetcher, error) {
	gh := github.NewClient(nil)
	if githubToken != "" {
		gh = gh.WithAuthToken(githubToken)
	}

	gl, err := gitlab.NewClient(gitlabToken)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	f := &CommentFetcher{gh: gh, gl: gl}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Existing returns prior comments and reviews for the patch source formatted
// as a prompt block, or "" when there are none. Partial fetch failures are
// logged and skipped; the review proceeds without them.
func (f *CommentFetcher) Existing(ctx context.Context, src resolve.PatchSource) string {
	var comments []string

	switch s := src.(type) {
	case resolve.GitHubPullRequest:
		comments = f.githubPullRequest(ctx, s)
	case resolve.GitHubCommit:
		comments = f.githubCommit(ctx, s)
	case resolve.GitLabMergeRequest:
		comments = f.gitlabMergeRequest(ctx, s)
	case resolve.PhabricatorDiff:
		logrus.Info("Phabricator comment fetching requires Conduit API authentication (not implemented)")
	}

	if len(comments) == 0 {
		return ""
	}

	return "\n\n" + banner + "\nEXISTING COMMENTS/REVIEWS:\n" + banner + "\n\n" +
		strings.Join(comments, "\n\n---\n\n") + "\n\n" + banner + "\n"
}

func (f *CommentFetcher) githubPullRequest(ctx context.Context, s resolve.GitHubPullRequest) []string {
	var out []string

	// Inline review comments.
	reviewComments, _, err := f.gh.PullRequests.ListComments(ctx, s.Owner, s.Repo, s.Number, nil)
	if err != nil {
		logrus.Warnf("fetching PR review comments: %v", err)
	}
	for _, c := range reviewComments {
		out = append(out, fmt.Sprintf("Review comment by %s on %s:%d\n%s",
			c.GetUser().GetLogin(), c.GetPath(), c.GetLine(), c.GetBody()))
	}

	// General conversation comments.
	issueComments, _, err := f.gh.Issues.ListComments(ctx, s.Owner, s.Repo, s.Number, nil)
	if err != nil {
		logrus.Warnf("fetching PR comments: %v", err)
	}
	for _, c := range issueComments {
		out = append(out, fmt.Sprintf("General comment by %s\n%s",
			c.GetUser().GetLogin(), c.GetBody()))
	}

	// Reviews with body text (approve / request changes / comment).
	reviews, _, err := f.gh.PullRequests.ListReviews(ctx, s.Owner, s.Repo, s.Number, nil)
	if err != nil {
		logrus.Warnf("fetching PR reviews: %v", err)
	}
	for _, r := range reviews {
		if r.GetBody() == "" {
			continue
		}
		out = append(out, fmt.Sprintf("Review by %s (%s)\n%s",
			r.GetUser().GetLogin(), r.GetState(), r.GetBody()))
	}

	return out
}

func (f *CommentFetcher) githubCommit(ctx context.Context, s resolve.GitHubCommit) []string {
	comments, _, err := f.gh.Repositories.ListCommitComments(ctx, s.Owner, s.Repo, s.SHA, nil)
	if err != nil {
		logrus.Warnf("fetching commit comments: %v", err)
		return nil
	}

	var out []string
	for _, c := range comments {
		out = append(out, fmt.Sprintf("Comment by %s on %s\n%s",
			c.GetUser().GetLogin(), c.GetPath(), c.GetBody()))
	}
	return out
}

func (f *CommentFetcher) gitlabMergeRequest(ctx context.Context, s resolve.GitLabMergeRequest) []string {
	project := s.Owner + "/" + s.Repo
	notes, _, err := f.gl.Notes.ListMergeRequestNotes(project, s.Number, nil, gitlab.WithContext(ctx))
	if err != nil {
		logrus.Warnf("fetching MR notes: %v", err)
		return nil
	}

	var out []string
	for _, n := range notes {
		if n.System {
			continue // skip "changed the description" noise
		}
		out = append(out, fmt.Sprintf("Note by %s\n%s", n.Author.Username, n.Body))
	}
	return out
}

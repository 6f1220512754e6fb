package workspace

import (
	"context"
	"fmt"
	"strings"
)

// StashLabel marks automated stashes so operators can recognize and recover
// them with `git stash list`.
const StashLabel = "patchctl: automated stash before patch review"

// Step names as they appear in StepReports.
const (
	StepStash         = "stash"
	StepResetClean    = "reset-clean"
	StepDefaultBranch = "default-branch"
	StepSyncDefault   = "sync-default"
	StepCreateBranch  = "create-branch"
)

// IsolateOptions controls recovery behavior during isolation.
type IsolateOptions struct {
	// AllowDestructiveRecovery permits reset --hard + clean -fd when
	// stashing a dirty tree fails. This discards uncommitted work, so it
	// is off unless explicitly requested.
	AllowDestructiveRecovery bool
}

// DirtyTreeError means the working tree could not be brought to a clean
// state without discarding uncommitted work.
type DirtyTreeError struct {
	Detail string
}

func (e *DirtyTreeError) Error() string {
	return fmt.Sprintf("working tree is dirty and stashing failed (%s); re-run with --force-clean to discard uncommitted changes", e.Detail)
}

// BranchError means the isolation branch could not be created. Without it,
// applying the patch would mutate the shared default branch.
type BranchError struct {
	Branch string
	Detail string
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("creating branch %s failed: %s", e.Branch, e.Detail)
}

// BranchName derives the isolation branch name from a run identifier. The
// identifier is unique per invocation so concurrent reviews sharing one
// clone cannot collide on the branch.
func BranchName(runID string) string {
	return "patch-review-" + runID
}

// Isolate brings the repository to a clean state on a fresh branch cut from
// an up-to-date default branch. Steps run in strict order; most degrade to
// warnings, but a failure to create the isolation branch itself is fatal.
// The returned StepReports record every non-ok step.
func Isolate(ctx context.Context, g Git, repo *Repo, runID string, opts IsolateOptions) (*Branch, []StepReport, error) {
	var reports []StepReport
	warn := func(step, detail string) {
		reports = append(reports, StepReport{Step: step, Severity: SeverityWarning, Detail: detail})
	}
	fatal := func(step, detail string) {
		reports = append(reports, StepReport{Step: step, Severity: SeverityFatal, Detail: detail})
	}

	// Clear dirty state. Stash first; the destructive fallback only runs
	// when the operator opted in.
	status, err := g.Status(ctx, repo.Path)
	if err != nil {
		return nil, reports, err
	}
	if strings.TrimSpace(status.Stdout) != "" {
		stash, err := g.StashPush(ctx, repo.Path, StashLabel)
		if err != nil {
			return nil, reports, err
		}
		if !stash.OK() {
			if !opts.AllowDestructiveRecovery {
				fatal(StepStash, stash.Output())
				return nil, reports, &DirtyTreeError{Detail: stash.Output()}
			}
			warn(StepResetClean, "stash failed; discarding uncommitted changes with reset --hard and clean -fd")
			if _, err := g.ResetHard(ctx, repo.Path); err != nil {
				return nil, reports, err
			}
			if _, err := g.Clean(ctx, repo.Path); err != nil {
				return nil, reports, err
			}
		}
	}

	// Determine the default branch. symbolic-ref is authoritative; the
	// remote branch listing is the fallback; the literal "main" is an
	// optimistic last resort whose checkout may fail loudly below.
	defaultBranch, report := detectDefaultBranch(ctx, g, repo)
	if report != nil {
		reports = append(reports, *report)
	}
	repo.DefaultBranch = defaultBranch

	// Sync the default branch, best effort. An apply against a slightly
	// stale base is still informative.
	if res, err := g.Checkout(ctx, repo.Path, defaultBranch); err != nil {
		return nil, reports, err
	} else if !res.OK() {
		warn(StepSyncDefault, fmt.Sprintf("checkout %s: %s", defaultBranch, res.Output()))
	}
	if res, err := g.Pull(ctx, repo.Path, defaultBranch); err != nil {
		return nil, reports, err
	} else if !res.OK() {
		warn(StepSyncDefault, fmt.Sprintf("pull origin %s: %s", defaultBranch, res.Output()))
	}

	// Create the isolation branch. This is the one step that must succeed.
	name := BranchName(runID)
	res, err := g.CheckoutNew(ctx, repo.Path, name)
	if err != nil {
		return nil, reports, err
	}
	if !res.OK() {
		fatal(StepCreateBranch, res.Output())
		return nil, reports, &BranchError{Branch: name, Detail: res.Output()}
	}

	return &Branch{Name: name, Base: defaultBranch}, reports, nil
}

func detectDefaultBranch(ctx context.Context, g Git, repo *Repo) (string, *StepReport) {
	if res, err := g.SymbolicRef(ctx, repo.Path); err == nil && res.OK() {
		ref := strings.TrimSpace(res.Stdout)
		if i := strings.LastIndex(ref, "/"); i >= 0 && i < len(ref)-1 {
			return ref[i+1:], nil
		}
	}

	if res, err := g.RemoteBranches(ctx, repo.Path); err == nil && res.OK() {
		if strings.Contains(res.Stdout, "origin/main") {
			return "main", nil
		}
		if strings.Contains(res.Stdout, "origin/master") {
			return "master", nil
		}
	}

	return "main", &StepReport{
		Step:     StepDefaultBranch,
		Severity: SeverityWarning,
		Detail:   "could not determine default branch, assuming main",
	}
}

// Package workspace prepares a local clone for a patch-application attempt:
// provisioning the clone, moving it onto a fresh isolation branch, and
// driving the multi-strategy apply engine.
package workspace

import (
	"context"
	"fmt"

	"github.com/patchkit/patchctl/internal/gitx"
)

// Git is the version-control capability the workspace operates through.
// *gitx.CLI satisfies it; tests substitute a scripted fake.
type Git interface {
	Status(ctx context.Context, dir string) (gitx.Result, error)
	StashPush(ctx context.Context, dir, label string) (gitx.Result, error)
	ResetHard(ctx context.Context, dir string) (gitx.Result, error)
	Clean(ctx context.Context, dir string) (gitx.Result, error)
	SymbolicRef(ctx context.Context, dir string) (gitx.Result, error)
	RemoteBranches(ctx context.Context, dir string) (gitx.Result, error)
	Checkout(ctx context.Context, dir, branch string) (gitx.Result, error)
	CheckoutNew(ctx context.Context, dir, branch string) (gitx.Result, error)
	Pull(ctx context.Context, dir, branch string) (gitx.Result, error)
	Fetch(ctx context.Context, dir string) (gitx.Result, error)
	Clone(ctx context.Context, remoteURL, path string) (gitx.Result, error)
	ApplyThreeWay(ctx context.Context, dir, patchFile string) (gitx.Result, error)
	ApplyPlain(ctx context.Context, dir, patchFile string) (gitx.Result, error)
	ApplyWhitespace(ctx context.Context, dir, patchFile string) (gitx.Result, error)
	ApplyCheck(ctx context.Context, dir, patchFile string) (gitx.Result, error)
	ApplyStat(ctx context.Context, dir, patchFile string) (gitx.Result, error)
}

// Repo is a provisioned local repository. Components operate on it by path;
// branch state is re-derived rather than cached because other tools may
// touch the clone between invocations.
type Repo struct {
	Path          string
	DefaultBranch string
}

// Branch is the isolation branch containing one patch-application attempt.
// It is never deleted by this tool; it is the durable artifact of a run.
type Branch struct {
	Name string
	Base string
}

// Severity classifies a pipeline step outcome.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// StepReport records what happened in one best-effort step, so the
// "which failures are survivable" policy is visible to the caller instead
// of buried in conditionals.
type StepReport struct {
	Step     string
	Severity Severity
	Detail   string
}

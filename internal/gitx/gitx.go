// Package gitx shells out to the git binary. Commands are always argument
// vectors, never shell strings. Exit codes are the control-flow signal;
// captured output is kept for diagnostics only.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single git invocation so a hung remote or
// credential prompt cannot block forever.
const DefaultTimeout = 10 * time.Minute

// Result holds the outcome of one git invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the invocation exited zero.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Output returns combined captured text, trimmed, for diagnostics.
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout + r.Stderr)
}

// ToolError means the git binary could not be executed at all. Manual holds
// the literal command the operator can run by hand.
type ToolError struct {
	Bin    string
	Manual string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s not available (%v); run manually: %s", e.Bin, e.Err, e.Manual)
}

func (e *ToolError) Unwrap() error { return e.Err }

// TimeoutError means a git invocation exceeded its deadline. This is
// distinct from git itself reporting failure.
type TimeoutError struct {
	Args    []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("git %s timed out after %s", strings.Join(e.Args, " "), e.Timeout)
}

// CLI invokes the git binary.
type CLI struct {
	Bin     string
	Timeout time.Duration
}

// New returns a CLI with default binary and timeout.
func New() *CLI {
	return &CLI{Bin: "git", Timeout: DefaultTimeout}
}

func (c *CLI) run(ctx context.Context, dir string, args ...string) (Result, error) {
	bin := c.Bin
	if bin == "" {
		bin = "git"
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return res, &TimeoutError{Args: args, Timeout: timeout}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		manual := bin + " " + strings.Join(args, " ")
		if dir != "" {
			manual = "cd " + dir + " && " + manual
		}
		return res, &ToolError{Bin: bin, Manual: manual, Err: err}
	}

	return res, nil
}

// Status queries porcelain working-tree status.
func (c *CLI) Status(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "status", "--porcelain")
}

// StashPush stashes tracked and untracked changes under a label.
func (c *CLI) StashPush(ctx context.Context, dir, label string) (Result, error) {
	return c.run(ctx, dir, "stash", "push", "-u", "-m", label)
}

// ResetHard discards all tracked changes.
func (c *CLI) ResetHard(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "reset", "--hard", "HEAD")
}

// Clean removes untracked files and directories.
func (c *CLI) Clean(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "clean", "-fd")
}

// SymbolicRef reads the remote's recorded default-branch reference.
func (c *CLI) SymbolicRef(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "symbolic-ref", "refs/remotes/origin/HEAD")
}

// RemoteBranches lists remote-tracking branches.
func (c *CLI) RemoteBranches(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "branch", "-r")
}

// Checkout switches to an existing branch.
func (c *CLI) Checkout(ctx context.Context, dir, branch string) (Result, error) {
	return c.run(ctx, dir, "checkout", branch)
}

// CheckoutNew creates a branch and switches to it.
func (c *CLI) CheckoutNew(ctx context.Context, dir, branch string) (Result, error) {
	return c.run(ctx, dir, "checkout", "-b", branch)
}

// Pull fast-forwards a branch from origin.
func (c *CLI) Pull(ctx context.Context, dir, branch string) (Result, error) {
	return c.run(ctx, dir, "pull", "origin", branch)
}

// Fetch updates tracking refs from origin without touching the working tree.
func (c *CLI) Fetch(ctx context.Context, dir string) (Result, error) {
	return c.run(ctx, dir, "fetch", "origin")
}

// Clone clones a remote repository into path.
func (c *CLI) Clone(ctx context.Context, remoteURL, path string) (Result, error) {
	return c.run(ctx, "", "clone", remoteURL, path)
}

// ApplyThreeWay applies a patch file with blob-level merge reconciliation.
func (c *CLI) ApplyThreeWay(ctx context.Context, dir, patchFile string) (Result, error) {
	return c.run(ctx, dir, "apply", "--3way", patchFile)
}

// ApplyPlain applies a patch file with strict line context.
func (c *CLI) ApplyPlain(ctx context.Context, dir, patchFile string) (Result, error) {
	return c.run(ctx, dir, "apply", patchFile)
}

// ApplyWhitespace applies a patch file tolerating whitespace-only drift.
func (c *CLI) ApplyWhitespace(ctx context.Context, dir, patchFile string) (Result, error) {
	return c.run(ctx, dir, "apply", "--whitespace=fix", patchFile)
}

// ApplyCheck dry-runs a patch and reports which hunks fail. Never mutates
// the working tree.
func (c *CLI) ApplyCheck(ctx context.Context, dir, patchFile string) (Result, error) {
	return c.run(ctx, dir, "apply", "--check", patchFile)
}

// ApplyStat summarizes what an apply would touch. Never mutates the
// working tree.
func (c *CLI) ApplyStat(ctx context.Context, dir, patchFile string) (Result, error) {
	return c.run(ctx, dir, "apply", "--stat", patchFile)
}

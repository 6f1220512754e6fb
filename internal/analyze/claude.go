package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ClaudeRunner invokes the claude CLI in print mode with the prompt on
// stdin, so prompt size is never limited by argv and nothing is ever
// interpolated into a shell line.
type ClaudeRunner struct {
	Bin     string
	Timeout time.Duration
}

// NewClaudeRunner returns a runner with defaults.
func NewClaudeRunner() *ClaudeRunner {
	return &ClaudeRunner{Bin: "claude", Timeout: DefaultTimeout}
}

func (r *ClaudeRunner) Name() string { return "claude" }

// Analyze runs `claude --print` in dir, streaming output to out while
// capturing it. On failure the error carries the literal command the
// operator can run by hand.
func (r *ClaudeRunner) Analyze(ctx context.Context, dir, prompt string, out io.Writer) (string, error) {
	bin := r.Bin
	if bin == "" {
		bin = "claude"
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--print")
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(prompt)

	var captured bytes.Buffer
	w := io.MultiWriter(out, &captured)
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return captured.String(), fmt.Errorf("%s timed out after %s", bin, timeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%q not found; ensure the Claude Code CLI is installed", bin)
		}
		manual := fmt.Sprintf("cd %s && %s --print < <prompt-file>", dir, bin)
		return captured.String(), fmt.Errorf("%s failed (%v); run manually: %s", bin, err, manual)
	}

	return captured.String(), nil
}

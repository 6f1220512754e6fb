package workspace

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/patchkit/patchctl/internal/gitx"
)

// Strategy names the patch-application strategy that succeeded.
type Strategy string

const (
	StrategyThreeWay   Strategy = "3way"
	StrategyPlain      Strategy = "plain"
	StrategyWhitespace Strategy = "whitespace-fix"
	StrategyNone       Strategy = "none"
)

// ApplyOutcome is the result of one patch-application attempt. A failed
// apply is an expected outcome, not an error: Succeeded is false, Strategy
// is StrategyNone, and Diagnostics explains why.
type ApplyOutcome struct {
	Succeeded   bool
	Strategy    Strategy
	Diagnostics string
}

// ApplyPatch tries the ordered apply strategies against the repository,
// stopping at the first success. The patch text is staged in a temp file
// that is removed when the call returns, applied or not. Only
// environment-level failures (git missing, timeout, unwritable filesystem)
// come back as errors.
func ApplyPatch(ctx context.Context, g Git, repo *Repo, patchText string) (ApplyOutcome, error) {
	f, err := os.CreateTemp("", "patchctl-*.patch")
	if err != nil {
		return ApplyOutcome{}, fmt.Errorf("creating patch file: %w", err)
	}
	patchFile := f.Name()
	defer os.Remove(patchFile)

	if _, err := f.WriteString(patchText); err != nil {
		f.Close()
		return ApplyOutcome{}, fmt.Errorf("writing patch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return ApplyOutcome{}, fmt.Errorf("writing patch file: %w", err)
	}

	attempts := []struct {
		strategy Strategy
		apply    func(context.Context, string, string) (gitx.Result, error)
	}{
		{StrategyThreeWay, g.ApplyThreeWay},
		{StrategyPlain, g.ApplyPlain},
		{StrategyWhitespace, g.ApplyWhitespace},
	}

	for _, attempt := range attempts {
		res, err := attempt.apply(ctx, repo.Path, patchFile)
		if err != nil {
			return ApplyOutcome{}, err
		}
		if res.OK() {
			return ApplyOutcome{Succeeded: true, Strategy: attempt.strategy}, nil
		}
		logrus.Infof("%s apply failed, trying next strategy", attempt.strategy)
	}

	// Every strategy failed. Collect diagnostics with the non-mutating
	// check and stat passes so the caller can report why.
	diag, err := collectDiagnostics(ctx, g, repo, patchFile)
	if err != nil {
		return ApplyOutcome{}, err
	}
	return ApplyOutcome{Succeeded: false, Strategy: StrategyNone, Diagnostics: diag}, nil
}

func collectDiagnostics(ctx context.Context, g Git, repo *Repo, patchFile string) (string, error) {
	var b strings.Builder

	check, err := g.ApplyCheck(ctx, repo.Path, patchFile)
	if err != nil {
		return "", err
	}
	if out := check.Output(); out != "" {
		b.WriteString("conflicts:\n")
		b.WriteString(out)
		b.WriteString("\n")
	}

	stat, err := g.ApplyStat(ctx, repo.Path, patchFile)
	if err != nil {
		return "", err
	}
	if out := stat.Output(); out != "" {
		b.WriteString("would touch:\n")
		b.WriteString(out)
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "patch does not apply to the current tree and git reported no detail", nil
	}
	return strings.TrimSpace(b.String()), nil
}

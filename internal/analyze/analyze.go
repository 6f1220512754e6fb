// Package analyze sends a review prompt to an analysis backend: the local
// claude CLI, an OpenAI-compatible API, or claude inside a sandbox
// container. Output is streamed to the terminal and captured for storage.
package analyze

import (
	"context"
	"io"
	"time"
)

// DefaultTimeout bounds a single analysis invocation.
const DefaultTimeout = 5 * time.Minute

// Analyzer runs one prompt to completion. dir is the repository the
// analysis should run against; backends without filesystem access ignore
// it. The full output is streamed to out and also returned for persistence.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, dir, prompt string, out io.Writer) (string, error)
}

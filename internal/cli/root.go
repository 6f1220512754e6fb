// Package cli wires the patchctl commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var rootCmd = &cobra.Command{
	Use:   "patchctl",
	Short: "Fetch, apply and review patches from hosting-service URLs",
	Long: `patchctl downloads a patch from a GitHub PR/commit, GitLab MR or Mozilla
Phabricator URL, prepares a local clone of the target repository, applies the
patch on an isolated branch, and analyzes it with Claude Code or an
OpenAI-compatible API.`,
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command and returns an exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print patchctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "patchctl v%s\n", version)
	},
}

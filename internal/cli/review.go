package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patchkit/patchctl/internal/analyze"
	"github.com/patchkit/patchctl/internal/config"
	"github.com/patchkit/patchctl/internal/fetch"
	"github.com/patchkit/patchctl/internal/gitx"
	"github.com/patchkit/patchctl/internal/resolve"
	"github.com/patchkit/patchctl/internal/review"
	"github.com/patchkit/patchctl/internal/workspace"
)

var (
	flagConfig       string
	flagLanguage     string
	flagBaseDir      string
	flagQuestions    string
	flagNoCheckout   bool
	flagNoApply      bool
	flagForceClean   bool
	flagBackend      string
	flagModel        string
	flagSandbox      bool
	flagSandboxImage string
	flagNoFollowup   bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <url>",
	Short: "Review a patch from a GitHub, GitLab or Phabricator URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runReview(cmd.Context(), args[0])
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config file")
	reviewCmd.Flags().StringVarP(&flagLanguage, "language", "l", "", "Programming language for the review context")
	reviewCmd.Flags().StringVarP(&flagBaseDir, "base-dir", "d", "", "Base directory for repositories")
	reviewCmd.Flags().StringVarP(&flagQuestions, "questions", "q", "", "Additional questions to ask about the patch")
	reviewCmd.Flags().BoolVar(&flagNoCheckout, "no-checkout", false, "Don't clone/update the repository, only analyze the patch")
	reviewCmd.Flags().BoolVar(&flagNoApply, "no-apply", false, "Don't apply the patch, only analyze the diff")
	reviewCmd.Flags().BoolVar(&flagForceClean, "force-clean", false, "Discard uncommitted changes if stashing a dirty tree fails")
	reviewCmd.Flags().StringVar(&flagBackend, "backend", "", "Analysis backend (claude, openai)")
	reviewCmd.Flags().StringVar(&flagModel, "model", "", "Model name for the openai backend")
	reviewCmd.Flags().BoolVar(&flagSandbox, "sandbox", false, "Run the analysis inside a container")
	reviewCmd.Flags().StringVar(&flagSandboxImage, "sandbox-image", "", "Container image for sandboxed analysis")
	reviewCmd.Flags().BoolVar(&flagNoFollowup, "no-followup", false, "Skip the interactive follow-up loop")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagBaseDir != "" {
		cfg.BaseDir = flagBaseDir
	}
	if flagForceClean {
		cfg.ForceClean = true
	}
	if flagBackend != "" {
		cfg.Analyze.Backend = flagBackend
	}
	if flagModel != "" {
		cfg.Analyze.OpenAIModel = flagModel
	}
	if flagSandboxImage != "" {
		cfg.Sandbox.Image = flagSandboxImage
	}
	return cfg, cfg.Validate()
}

func buildAnalyzer(cfg *config.Config) analyze.Analyzer {
	if flagSandbox {
		return &analyze.Sandbox{Image: cfg.Sandbox.Image, AuthDir: cfg.Sandbox.AuthDir}
	}
	if cfg.Analyze.Backend == "openai" {
		return analyze.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.Analyze.OpenAIBaseURL, cfg.Analyze.OpenAIModel)
	}
	return &analyze.ClaudeRunner{
		Bin:     "claude",
		Timeout: time.Duration(cfg.Analyze.TimeoutSeconds) * time.Second,
	}
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = code
}

func runReview(ctx context.Context, url string) {
	cfg, err := loadConfig()
	if err != nil {
		fail(ExitUsageError, "%v", err)
		return
	}

	// Resolve before touching the network or the filesystem. An
	// unclassifiable URL stops everything here.
	loc := resolve.Resolve(url)
	src := resolve.ClassifyPatchSource(url)
	if loc == nil || src == nil {
		fail(ExitUsageError, "unsupported URL: %s (expected a GitHub PR/commit, GitLab MR or Phabricator URL)", url)
		return
	}
	fmt.Printf("Repository: %s/%s\n", loc.Owner, loc.Name)

	fmt.Printf("Downloading patch from %s\n", src.DiffURL())
	patchText, err := fetch.NewDownloader().Patch(ctx, src)
	if err != nil {
		fail(ExitRuntimeError, "downloading patch: %v", err)
		return
	}

	fmt.Println("Fetching existing comments and reviews...")
	var existingComments string
	if fetcher, err := fetch.NewCommentFetcher(cfg.GitHubToken, cfg.GitLabToken); err != nil {
		logrus.Warnf("comment fetching unavailable: %v", err)
	} else {
		existingComments = fetcher.Existing(ctx, src)
	}
	if existingComments != "" {
		fmt.Println("Found existing comments/reviews")
	} else {
		fmt.Println("No existing comments found or unable to fetch")
	}

	store := review.NewStore("")
	previous, when, hasPrevious := store.LoadPrevious(url)
	if hasPrevious {
		fmt.Printf("\nFound previous review from %s\n", when.Format("2006-01-02 15:04:05"))
	}

	analyzer := buildAnalyzer(cfg)
	runID := strconv.Itoa(os.Getpid())

	if flagNoCheckout {
		fmt.Println("Analyzing patch without repository checkout...")
		analyzeAndFollowup(ctx, analyzer, store, "", url, review.PromptInput{
			Language:         cfg.Language,
			URL:              url,
			PatchText:        patchText,
			PreviousReview:   previous,
			ExistingComments: existingComments,
			CustomQuestions:  flagQuestions,
		})
		return
	}

	git := &gitx.CLI{Bin: "git", Timeout: time.Duration(cfg.Git.TimeoutSeconds) * time.Second}

	repo, err := workspace.Ensure(ctx, git, loc, cfg.BaseDir)
	if err != nil {
		fail(ExitRuntimeError, "provisioning repository: %v", err)
		return
	}
	fmt.Printf("Repository ready at %s\n", repo.Path)

	applied := false
	if !flagNoApply {
		branch, reports, err := workspace.Isolate(ctx, git, repo, runID, workspace.IsolateOptions{
			AllowDestructiveRecovery: cfg.ForceClean,
		})
		for _, r := range reports {
			if r.Severity == workspace.SeverityWarning {
				logrus.Warnf("%s: %s", r.Step, r.Detail)
			}
		}
		if err != nil {
			fail(ExitRuntimeError, "isolating branch: %v", err)
			return
		}
		fmt.Printf("Created branch %s from %s\n", branch.Name, branch.Base)

		outcome, err := workspace.ApplyPatch(ctx, git, repo, patchText)
		if err != nil {
			fail(ExitRuntimeError, "applying patch: %v", err)
			return
		}
		applied = outcome.Succeeded
		switch {
		case outcome.Succeeded && outcome.Strategy == workspace.StrategyWhitespace:
			fmt.Println("Patch applied with whitespace fixes (lower confidence: whitespace normalization can mask differences)")
		case outcome.Succeeded:
			fmt.Printf("Patch applied successfully (%s)\n", outcome.Strategy)
		default:
			fmt.Println("Warning: failed to apply patch by any strategy, continuing with original patch content")
			if outcome.Diagnostics != "" {
				fmt.Println(outcome.Diagnostics)
			}
		}
	}

	in := review.PromptInput{
		Language:         cfg.Language,
		URL:              url,
		PreviousReview:   previous,
		ExistingComments: existingComments,
		CustomQuestions:  flagQuestions,
	}
	if !applied {
		// The working tree does not reflect the patch; analyze the raw
		// diff instead of a git-derived one.
		in.PatchText = patchText
	}

	// Preserve the prompt in the repo for manual re-runs and follow-ups.
	prompt := review.BuildPrompt(in)
	promptPath := filepath.Join(repo.Path, fmt.Sprintf("claude-review-prompt-%s.txt", runID))
	if err := os.WriteFile(promptPath, []byte(prompt), 0o644); err != nil {
		logrus.Warnf("could not save prompt to %s: %v", promptPath, err)
	} else {
		fmt.Printf("Prompt saved to: %s\n", promptPath)
	}

	analyzeAndFollowup(ctx, analyzer, store, repo.Path, url, in)
}

func analyzeAndFollowup(ctx context.Context, analyzer analyze.Analyzer, store *review.Store, dir, url string, in review.PromptInput) {
	prompt := review.BuildPrompt(in)

	fmt.Printf("\nAnalyzing patch with %s (%s context)...\n", analyzer.Name(), in.Language)
	output, err := analyzer.Analyze(ctx, dir, prompt, os.Stdout)
	if err != nil {
		fail(ExitRuntimeError, "analysis failed: %v", err)
		return
	}
	analyze.PrintCompletion(os.Stdout, url)

	if output != "" {
		if path, err := store.Save(url, output); err != nil {
			logrus.Warnf("saving review: %v", err)
		} else {
			fmt.Printf("\nReview saved to: %s\n", path)
		}
	}

	if flagNoFollowup || flagSandbox {
		return
	}
	analyze.Followup(ctx, analyzer, dir, url, os.Stdin, os.Stdout)
}

package review

import (
	"fmt"
	"strings"
)

// PromptInput carries everything the analysis prompt is assembled from.
type PromptInput struct {
	Language         string
	URL              string
	PatchText        string // raw diff; empty when the patch is applied in the working tree
	PreviousReview   string
	ExistingComments string
	CustomQuestions  string
}

const analysisQuestions = `Analyze the patch overall and answer these questions:
* What does this patch do? Provide a brief summary.
* Propose specific improvements to this patch. Be concrete and actionable - provide exact code snippets showing how to implement the improvements.
* Identify and suggest how to reduce any code duplication. Show the exact refactored code.
* Propose specific performance improvements if applicable. Include concrete code examples.
* Identify potential bugs or edge cases not handled, and suggest how to fix them. Provide the actual code fix.
* Propose refactoring opportunities that would improve code quality, readability, or maintainability. Show before/after code examples with the concrete changes.

IMPORTANT: For every issue or improvement you identify, provide concrete code examples showing exactly how to fix it. Don't just describe what should be done - show the actual code.

Note: Focus your analysis on the implementation code. Keep test analysis brief - only mention critical issues in test code.`

const lineFeedbackFormat = `At the end of the output, provide LINE-BY-LINE FEEDBACK for ISSUES ONLY (no positive feedback) in this format:
filename:line_number severity "comment"

Severity levels: "PEDANTIC", "LOW", "MEDIUM", "HIGH"

Only include lines that have problems, potential bugs, improvements needed, pedantic, deduplication or other issues.
For example:
src/main.rs:45 LOW "Consider using unwrap_or_else() instead of unwrap() to handle potential errors"
lib/parser.rs:123 HIGH "This variable name 'x' is not descriptive"

If there are no issues with specific lines, just write "No line-specific issues found."`

const summaryRequest = `At the end, please provide a SIMPLIFIED SUMMARY section with:
--- COPY-PASTE SUMMARY START ---
[A concise review summary that can be posted as a comment, including:
- Key findings (improvements needed, bugs, performance issues)
- Overall assessment (LGTM with minor suggestions / Needs changes / etc.)
]
--- COPY-PASTE SUMMARY END ---`

// BuildPrompt assembles the analysis prompt. When PatchText is empty the
// patch is assumed applied in the working tree and the analyzer is asked to
// load it with git diff; otherwise the raw diff is embedded directly.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I am a %s developer, I need to review this patch from: %s\n\n", in.Language, in.URL)

	if in.PatchText != "" {
		fmt.Fprintf(&b, "Here is the patch content:\n```patch\n%s\n```\n\n", strings.TrimRight(in.PatchText, "\n"))
	} else {
		b.WriteString("Load the current changes with 'git diff' and analyze them.\n\n")
	}

	if in.PreviousReview != "" {
		b.WriteString("\n" + banner + "\n")
		b.WriteString("PREVIOUS REVIEW:\n")
		b.WriteString(banner + "\n\n")
		b.WriteString(in.PreviousReview)
		b.WriteString("\n\n" + banner + "\n")
		b.WriteString("Please compare the current patch with the previous review above.\n")
		b.WriteString("Note any improvements made, remaining issues, and new concerns.\n")
		b.WriteString(banner + "\n\n")
	}

	if in.ExistingComments != "" {
		b.WriteString(in.ExistingComments)
		b.WriteString("\nPlease consider the above existing comments/reviews when providing your analysis.\n\n")
	}

	b.WriteString(analysisQuestions)
	b.WriteString("\n\n")
	b.WriteString(lineFeedbackFormat)

	if in.CustomQuestions != "" {
		fmt.Fprintf(&b, "\n\nAdditional questions:\n%s", in.CustomQuestions)
	}

	b.WriteString("\n\n")
	b.WriteString(summaryRequest)

	return b.String()
}

package analyze

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const separator = "================================================================================"

// PrintCompletion prints the end-of-analysis banner with the reviewed URL.
func PrintCompletion(out io.Writer, url string) {
	fmt.Fprintf(out, "\n%s\nAnalysis complete\n\nReviewed patch: %s\n%s\n", separator, url, separator)
}

// Followup runs the interactive question loop: each line from in becomes a
// fresh prompt to the analyzer, answered in the repository context. The loop
// ends on EOF or an exit word. Analyzer failures are reported and the loop
// continues; a follow-up question is never worth aborting the session over.
func Followup(ctx context.Context, a Analyzer, dir, url string, in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "\n%s\nINTERACTIVE FOLLOW-UP MODE\n%s\n", separator, separator)
	fmt.Fprintln(out, "You can now ask follow-up questions about the patch.")
	fmt.Fprintln(out, "Type your question and press Enter. Type 'exit' or 'quit' to finish.")
	fmt.Fprintln(out, separator)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\nYour question (or 'exit' to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			PrintCompletion(out, url)
			return
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "exit", "quit", "q", "done":
			fmt.Fprintln(out, "\nExiting interactive mode...")
			PrintCompletion(out, url)
			return
		}

		fmt.Fprintf(out, "\n%s\nRESPONSE:\n%s\n\n", separator, separator)
		if _, err := a.Analyze(ctx, dir, question, out); err != nil {
			fmt.Fprintf(out, "\nWarning: %v\n", err)
			fmt.Fprintln(out, "You can try again or type 'exit' to quit.")
		}
	}
}

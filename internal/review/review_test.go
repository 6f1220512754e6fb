package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widget/pull/42", "acme-widget-pr-42"},
		{"https://github.com/acme/widget/commit/deadbeefcafe1234", "acme-widget-commit-deadbeef"},
		{"https://gitlab.com/acme/widget/-/merge_requests/9", "acme-widget-mr-9"},
		{"https://phabricator.services.mozilla.com/D123456", "mozilla-firefox-phab-D123456"},
	}
	for _, tt := range tests {
		if got := Identifier(tt.url); got != tt.want {
			t.Errorf("Identifier(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIdentifier_FallbackIsStable(t *testing.T) {
	a := Identifier("https://example.com/whatever")
	b := Identifier("https://example.com/whatever")
	if a != b {
		t.Errorf("fallback identifier not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "review-") {
		t.Errorf("fallback identifier = %q, want review- prefix", a)
	}
	if a == Identifier("https://example.com/other") {
		t.Error("different URLs should hash differently")
	}
}

func TestStore_SaveAndLoadPrevious(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	url := "https://github.com/acme/widget/pull/42"

	if _, _, ok := s.LoadPrevious(url); ok {
		t.Fatal("LoadPrevious() = ok before any save")
	}

	path, err := s.Save(url, "the review body")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := filepath.Join(dir, "reviews", "acme-widget-pr-42-latest.txt")
	if path != want {
		t.Errorf("Save() path = %q, want %q", path, want)
	}

	content, when, ok := s.LoadPrevious(url)
	if !ok {
		t.Fatal("LoadPrevious() = !ok after save")
	}
	if !strings.Contains(content, "the review body") {
		t.Errorf("content = %q, want review body", content)
	}
	if !strings.Contains(content, "Patch URL: "+url) {
		t.Errorf("content = %q, want URL header", content)
	}
	if when.IsZero() {
		t.Error("LoadPrevious() returned zero time")
	}
}

func TestStore_SaveReplacesPrevious(t *testing.T) {
	s := NewStore(t.TempDir())
	url := "https://github.com/acme/widget/pull/42"

	if _, err := s.Save(url, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(url, "second"); err != nil {
		t.Fatal(err)
	}

	content, _, _ := s.LoadPrevious(url)
	if strings.Contains(content, "first") {
		t.Error("old review should be replaced")
	}
	if !strings.Contains(content, "second") {
		t.Error("new review missing")
	}
}

func TestStore_MissingRootIsCreated(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "deeper")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewStore(root)
	if _, err := s.Save("https://github.com/a/b/pull/1", "x"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestBuildPrompt_WithPatchText(t *testing.T) {
	p := BuildPrompt(PromptInput{
		Language:  "Rust",
		URL:       "https://github.com/acme/widget/pull/42",
		PatchText: "diff --git a/x b/x\n+added line\n",
	})

	for _, want := range []string{
		"I am a Rust developer",
		"https://github.com/acme/widget/pull/42",
		"```patch\ndiff --git a/x b/x\n+added line\n```",
		"LINE-BY-LINE FEEDBACK",
		"--- COPY-PASTE SUMMARY START ---",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "git diff") {
		t.Error("embedded patch should not also instruct a git diff load")
	}
}

func TestBuildPrompt_AppliedPatchUsesGitDiff(t *testing.T) {
	p := BuildPrompt(PromptInput{Language: "Go", URL: "u"})
	if !strings.Contains(p, "Load the current changes with 'git diff'") {
		t.Error("applied patch should instruct a git diff load")
	}
	if strings.Contains(p, "```patch") {
		t.Error("no patch block expected when patch is applied")
	}
}

func TestBuildPrompt_Sections(t *testing.T) {
	p := BuildPrompt(PromptInput{
		Language:         "Rust",
		URL:              "u",
		PatchText:        "diff\n",
		PreviousReview:   "old findings",
		ExistingComments: "EXISTING COMMENTS/REVIEWS:\nalice said things",
		CustomQuestions:  "Is the unsafe block sound?",
	})

	prev := strings.Index(p, "PREVIOUS REVIEW:")
	comments := strings.Index(p, "alice said things")
	questions := strings.Index(p, "Is the unsafe block sound?")
	summary := strings.Index(p, "COPY-PASTE SUMMARY START")

	if prev < 0 || comments < 0 || questions < 0 || summary < 0 {
		t.Fatalf("missing sections: prev=%d comments=%d questions=%d summary=%d", prev, comments, questions, summary)
	}
	if !(prev < comments && comments < questions && questions < summary) {
		t.Error("prompt sections out of order")
	}
	if !strings.Contains(p, "compare the current patch with the previous review") {
		t.Error("previous-review comparison instruction missing")
	}
}

package gitx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_CapturesExitCode(t *testing.T) {
	c := &CLI{Bin: "sh", Timeout: 5 * time.Second}

	res, err := c.run(context.Background(), "", "-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.OK() {
		t.Error("OK() = true for nonzero exit")
	}
	if res.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "out\n")
	}
	if res.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "err\n")
	}
}

func TestRun_Success(t *testing.T) {
	c := &CLI{Bin: "sh", Timeout: 5 * time.Second}

	res, err := c.run(context.Background(), "", "-c", "echo hello")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !res.OK() {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Output() != "hello" {
		t.Errorf("Output() = %q, want %q", res.Output(), "hello")
	}
}

func TestRun_Timeout(t *testing.T) {
	c := &CLI{Bin: "sleep", Timeout: 100 * time.Millisecond}

	_, err := c.run(context.Background(), "", "5")
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("run() error = %v, want *TimeoutError", err)
	}
	if te.Timeout != 100*time.Millisecond {
		t.Errorf("Timeout = %v, want 100ms", te.Timeout)
	}
}

func TestRun_ToolNotFound(t *testing.T) {
	c := &CLI{Bin: "definitely-not-a-real-binary", Timeout: time.Second}

	_, err := c.run(context.Background(), "/tmp", "status")
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("run() error = %v, want *ToolError", err)
	}
	// The error must carry a literal command the operator can run by hand.
	if te.Manual == "" {
		t.Error("ToolError.Manual is empty")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	if c.Bin != "git" {
		t.Errorf("Bin = %q, want git", c.Bin)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
}

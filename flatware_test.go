package flatware

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

func TestExecute_WithStepDefinitions(t *testing.T) {
	dir := t.TempDir()
	feature := "Feature: cart\n\n  Scenario: add\n    Given an item\n\n  Scenario: pay\n    Given a declined card\n"
	if err := os.WriteFile(filepath.Join(dir, "cart.feature"), []byte(feature), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := Execute(Options{
		Initializer: func(sc *godog.ScenarioContext) {
			sc.Step(`^an item$`, func() error { return nil })
			sc.Step(`^a declined card$`, func() error { return errors.New("declined") })
		},
		Stdout: &stdout,
		Stderr: &stderr,
		Args:   []string{"--transport", "memory", "--no-color", "run", "--workers", "1", dir},
	})

	if code != 1 {
		t.Errorf("expected exit code 1, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "2 scenarios (1 passed, 1 failed)\n") {
		t.Errorf("step definitions should be used, got %q", stdout.String())
	}
}

func TestExecute_Version(t *testing.T) {
	var stdout bytes.Buffer
	code := Execute(Options{Version: "1.2.3", Stdout: &stdout, Args: []string{"--version"}})

	if code != 0 {
		t.Errorf("expected success, got %d", code)
	}
	if !strings.Contains(stdout.String(), "1.2.3") {
		t.Errorf("unexpected version output %q", stdout.String())
	}
}

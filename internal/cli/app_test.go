package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/shaiso/flatware/internal/exitcodes"
	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/plan"
)

const suiteFeature = `Feature: checkout

  Scenario: pays
    Given a passing step

  Scenario: declines
    Given a failing step
`

func initializeSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a passing step$`, func() error { return nil })
	sc.Step(`^a failing step$`, func() error { return errors.New("card declined") })
}

func writeFeature(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "checkout.feature"), []byte(text), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(Options{
		Initializer: initializeSteps,
		Stdout:      &stdout,
		Stderr:      &stderr,
	})
	cmd.SetArgs(args)

	code := ExitCode(cmd.Execute())
	return stdout.String(), stderr.String(), code
}

// --- Command Tests ---

func TestRunCmd_InProcess(t *testing.T) {
	dir := writeFeature(t, suiteFeature)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(Options{Initializer: initializeSteps, Stdout: &stdout, Stderr: &stderr})
	cmd.SetArgs([]string{"--transport", "memory", "--no-color", "run", "--workers", "2", dir})
	code := ExitCode(cmd.Execute())

	if code != exitcodes.TestFailure {
		t.Errorf("expected exit code %d, got %d (stderr: %s)", exitcodes.TestFailure, code, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "2 scenarios (1 passed, 1 failed)\n") {
		t.Errorf("unexpected summary %q", out)
	}
	if !strings.Contains(out, "card declined") {
		t.Errorf("failure should be reported, got %q", out)
	}
}

func TestRunCmd_AllPassed(t *testing.T) {
	dir := writeFeature(t, "Feature: ok\n\n  Scenario: one\n    Given a passing step\n")

	out, _, code := execute(t, "--transport", "memory", "--no-color", "run", dir)
	if code != exitcodes.Success {
		t.Errorf("expected success, got %d", code)
	}
	if !strings.Contains(out, "1 scenario (1 passed)\n") {
		t.Errorf("unexpected summary %q", out)
	}
}

func TestRunCmd_SkippedAfterFailure(t *testing.T) {
	dir := writeFeature(t, "Feature: f\n\n  Scenario: s\n    Given a failing step\n    And a passing step\n")

	out, _, code := execute(t, "--transport", "memory", "--no-color", "run", "--workers", "1", dir)
	if code != exitcodes.TestFailure {
		t.Errorf("expected test failure, got %d", code)
	}
	if !strings.Contains(out, "1 scenario (1 failed)\n") {
		t.Errorf("unexpected scenario line in %q", out)
	}
	if !strings.Contains(out, "2 steps (1 failed, 1 skipped)\n") {
		t.Errorf("skipped step must reach the summary, got %q", out)
	}
}

func TestPlanCmd_JSON(t *testing.T) {
	dir := writeFeature(t, suiteFeature)

	out, _, code := execute(t, "--json", "plan", "--workers", "3", dir)
	if code != exitcodes.Success {
		t.Fatalf("unexpected exit code %d", code)
	}

	var view planView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("output should be JSON: %v\n%s", err, out)
	}
	if len(view.Expected) != 2 || len(view.Workers) != 3 || len(view.Workers[0]) != 1 {
		t.Errorf("unexpected plan %+v", view)
	}
}

func TestPlanCmd_WritesManifest(t *testing.T) {
	dir := writeFeature(t, suiteFeature)
	manifest := filepath.Join(t.TempDir(), "plan.yaml")

	if _, _, code := execute(t, "plan", "--out", manifest, dir); code != exitcodes.Success {
		t.Fatalf("unexpected exit code %d", code)
	}

	out, _, code := execute(t, "plan", "--manifest", manifest)
	if code != exitcodes.Success {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !strings.Contains(out, "checkout.feature") {
		t.Errorf("manifest should list the feature, got %q", out)
	}
}

func TestSinkCmd_MemoryTransportRejected(t *testing.T) {
	dir := writeFeature(t, suiteFeature)

	_, _, code := execute(t, "--transport", "memory", "sink", dir)
	if code != exitcodes.RuntimeErr {
		t.Errorf("expected runtime error, got %d", code)
	}
}

func TestSinkCmd_NoWork(t *testing.T) {
	if _, _, code := execute(t, "--transport", "memory", "sink"); code != exitcodes.RuntimeErr {
		t.Errorf("expected runtime error, got %d", code)
	}
}

func TestRootCmd_InvalidTransport(t *testing.T) {
	if _, _, code := execute(t, "--transport", "carrier-pigeon", "plan"); code != exitcodes.RuntimeErr {
		t.Errorf("expected runtime error, got %d", code)
	}
}

// --- Exit Code Tests ---

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcodes.Success},
		{"test failure", &ExitError{Code: exitcodes.TestFailure}, exitcodes.TestFailure},
		{"wrapped exit error", errors.Join(errors.New("ctx"), &ExitError{Code: exitcodes.TestFailure}), exitcodes.TestFailure},
		{"plain error", errors.New("broker down"), exitcodes.RuntimeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSinkBuffer(t *testing.T) {
	if got := sinkBuffer(&plan.Plan{}); got != mq.DefaultSinkBuffer {
		t.Errorf("unknown size should use the default, got %d", got)
	}
	if got := sinkBuffer(&plan.Plan{Pickles: 1000, Steps: 5000}); got != 6016 {
		t.Errorf("expected buffer for every message, got %d", got)
	}
}

func TestSlice(t *testing.T) {
	dir := writeFeature(t, suiteFeature)
	p, err := resolvePlan("", []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := slice(p, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected the only feature in slice 0, got %v", got)
	}

	if _, err := slice(p, 2, 2); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

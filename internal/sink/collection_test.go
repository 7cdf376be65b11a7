package sink

import (
	"testing"

	"github.com/shaiso/flatware/internal/domain"
)

// --- Collection Tests ---

func TestCollection_CompleteIsIdempotent(t *testing.T) {
	c := NewCollection()

	if !c.Complete("S1") {
		t.Error("first completion should be new")
	}
	if c.Complete("S1") {
		t.Error("repeated completion should be ignored")
	}

	if got := c.Completed(); len(got) != 1 || got[0] != "S1" {
		t.Errorf("unexpected completed list %v", got)
	}
}

func TestCollection_Done(t *testing.T) {
	c := NewCollection()
	expected := []string{"S1", "S2"}

	if c.Done(expected) {
		t.Error("nothing completed yet")
	}

	c.Complete("S2")
	if got := c.Remaining(expected); len(got) != 1 || got[0] != "S1" {
		t.Errorf("unexpected remaining %v", got)
	}

	c.Complete("S3")
	c.Complete("S1")
	if !c.Done(expected) {
		t.Error("all expected work is completed")
	}
	if got := c.Remaining(expected); len(got) != 0 {
		t.Errorf("expected no remaining work, got %v", got)
	}
}

func TestCollection_EmptyExpectedIsDone(t *testing.T) {
	if !NewCollection().Done(nil) {
		t.Error("empty expected work should be done immediately")
	}
}

func TestCollection_StepsAreCopied(t *testing.T) {
	c := NewCollection()
	c.AddStep(domain.StepResult{Status: domain.StatusPassed, ScenarioID: "S1"})

	steps := c.Steps()
	steps[0].Status = domain.StatusFailed

	if c.Steps()[0].Status != domain.StatusPassed {
		t.Error("Steps must return a copy")
	}
}

func TestCollection_SummaryInput(t *testing.T) {
	c := NewCollection()
	c.AddStep(domain.StepResult{Status: domain.StatusPassed, ScenarioID: "S1"})
	c.Complete("S1")

	in := c.SummaryInput(true)
	if !in.Partial {
		t.Error("partial flag should be passed through")
	}
	if len(in.Steps) != 1 || len(in.Completed) != 1 {
		t.Errorf("unexpected input %+v", in)
	}
}

package mq

import (
	"errors"
	"testing"

	"github.com/shaiso/flatware/internal/domain"
)

// --- Codec Tests ---

func TestEncodeDecode_StepResultWithFailure(t *testing.T) {
	step := domain.StepResult{
		Status: domain.StatusFailed,
		Error: &domain.SerializedFailure{
			TypeName:  "*errors.errorString",
			Message:   "boom",
			Backtrace: []string{"features/a.feature:3", "steps.go:42"},
		},
		ScenarioID: "features/a.feature:Adding",
	}

	body, err := Encode(NewStepResultMessage(step))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := Decode(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Kind != KindStepResult {
		t.Fatalf("expected %s, got %s", KindStepResult, msg.Kind)
	}
	if msg.ID == "" {
		t.Error("ID should survive encoding")
	}
	if msg.Step.Status != domain.StatusFailed {
		t.Errorf("expected failed, got %s", msg.Step.Status)
	}
	if msg.Step.ScenarioID != step.ScenarioID {
		t.Errorf("expected scenario %q, got %q", step.ScenarioID, msg.Step.ScenarioID)
	}
	if msg.Step.Error == nil {
		t.Fatal("failure snapshot should survive encoding")
	}
	if msg.Step.Error.TypeName != "*errors.errorString" || msg.Step.Error.Message != "boom" {
		t.Errorf("unexpected failure %+v", msg.Step.Error)
	}
	if len(msg.Step.Error.Backtrace) != 2 || msg.Step.Error.Backtrace[1] != "steps.go:42" {
		t.Errorf("unexpected backtrace %v", msg.Step.Error.Backtrace)
	}
}

func TestEncodeDecode_StepWithoutScenario(t *testing.T) {
	body, err := Encode(NewStepResultMessage(domain.StepResult{Status: domain.StatusSkipped}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := Decode(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Step.HasScenario() {
		t.Error("scenario id should stay empty")
	}
	if msg.Step.Error != nil {
		t.Error("failure should stay nil")
	}
}

func TestEncodeDecode_ScenarioCompleted(t *testing.T) {
	body, err := Encode(NewScenarioCompletedMessage("S1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := Decode(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindScenarioCompleted || msg.ScenarioID != "S1" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestEncodeDecode_Sentinel(t *testing.T) {
	body, err := Encode(NewSentinelMessage("operator"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := Decode(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindSentinel || msg.Reason != "operator" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	msg, err := Decode([]byte(`{"id":"1","kind":"example.row","payload":{"cells":3}}`))
	if err != nil {
		t.Fatalf("unknown kind must not be an error: %v", err)
	}
	if msg.Kind != KindUnknown {
		t.Errorf("expected unknown kind, got %s", msg.Kind)
	}
	if msg.RawKind != "example.row" {
		t.Errorf("expected raw kind example.row, got %q", msg.RawKind)
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	body := []byte(`{"id":"1","kind":"scenario.completed","payload":{"scenario_id":"S2","worker":"w-3"},"trace":"abc"}`)

	msg, err := Decode(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ScenarioID != "S2" {
		t.Errorf("expected S2, got %q", msg.ScenarioID)
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `seppuku`},
		{"truncated", `{"id":"1","kind":`},
		{"step without payload", `{"id":"1","kind":"step.result"}`},
		{"step with bad status", `{"id":"1","kind":"step.result","payload":{"status":"exploded"}}`},
		{"scenario without id", `{"id":"1","kind":"scenario.completed","payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestEncode_RejectsUnknown(t *testing.T) {
	if _, err := Encode(Message{Kind: KindUnknown, RawKind: "x"}); err == nil {
		t.Error("expected error encoding unknown message")
	}
	if _, err := Encode(Message{Kind: KindStepResult}); err == nil {
		t.Error("expected error encoding step message without step")
	}
}

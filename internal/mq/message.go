package mq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flatware/internal/domain"
)

// Kind — тег варианта конверта.
type Kind string

// Варианты конверта. По сети передаются только первые три;
// KindUnknown получается при декодировании незнакомого тега.
const (
	KindStepResult        Kind = "step.result"
	KindScenarioCompleted Kind = "scenario.completed"
	KindSentinel          Kind = "sentinel"
	KindUnknown           Kind = "unknown"
)

// Message — закрытое объединение над StepResult, ScenarioCompletion и Sentinel.
//
// Заполнено ровно одно поле варианта в соответствии с Kind:
//   - KindStepResult        → Step
//   - KindScenarioCompleted → ScenarioID
//   - KindSentinel          → Reason (может быть пустым)
//   - KindUnknown           → RawKind
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string

	// Kind — вариант сообщения.
	Kind Kind

	// Step — результат шага.
	Step *domain.StepResult

	// ScenarioID — завершённый сценарий.
	ScenarioID string

	// Reason — причина отмены для Sentinel.
	Reason string

	// RawKind — исходный тег незнакомого сообщения (для логов).
	RawKind string

	// Timestamp — время создания.
	Timestamp time.Time
}

// envelope — формат на проводе.
type envelope struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ScenarioCompletedPayload — payload сообщения о завершённом сценарии.
type ScenarioCompletedPayload struct {
	ScenarioID string `json:"scenario_id"`
}

// SentinelPayload — payload запроса на отмену.
type SentinelPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewStepResultMessage создаёт сообщение с результатом шага.
func NewStepResultMessage(step domain.StepResult) Message {
	return Message{
		ID:        uuid.New().String(),
		Kind:      KindStepResult,
		Step:      &step,
		Timestamp: time.Now(),
	}
}

// NewScenarioCompletedMessage создаёт сообщение о завершении сценария.
func NewScenarioCompletedMessage(scenarioID string) Message {
	return Message{
		ID:         uuid.New().String(),
		Kind:       KindScenarioCompleted,
		ScenarioID: scenarioID,
		Timestamp:  time.Now(),
	}
}

// NewSentinelMessage создаёт запрос на отмену всего прогона.
func NewSentinelMessage(reason string) Message {
	return Message{
		ID:        uuid.New().String(),
		Kind:      KindSentinel,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Encode сериализует сообщение в конверт.
func Encode(msg Message) ([]byte, error) {
	var payload any
	switch msg.Kind {
	case KindStepResult:
		if msg.Step == nil {
			return nil, fmt.Errorf("encode %s: missing step", msg.Kind)
		}
		payload = msg.Step
	case KindScenarioCompleted:
		payload = ScenarioCompletedPayload{ScenarioID: msg.ScenarioID}
	case KindSentinel:
		payload = SentinelPayload{Reason: msg.Reason}
	case KindUnknown:
		return nil, fmt.Errorf("encode: unknown message kind %q", msg.RawKind)
	default:
		return nil, fmt.Errorf("encode: unsupported message kind %q", msg.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	body, err := json.Marshal(envelope{
		ID:        msg.ID,
		Kind:      string(msg.Kind),
		Payload:   raw,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return body, nil
}

// Decode разбирает конверт.
//
// Незнакомый тег — не ошибка: возвращается Message с KindUnknown.
// Битый JSON и невалидный payload известного варианта оборачиваются в ErrDecode.
// Лишние поля игнорируются.
func Decode(body []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	msg := Message{
		ID:        env.ID,
		Timestamp: env.Timestamp,
	}

	switch Kind(env.Kind) {
	case KindStepResult:
		var step domain.StepResult
		if err := json.Unmarshal(env.Payload, &step); err != nil {
			return Message{}, fmt.Errorf("%w: step payload: %v", ErrDecode, err)
		}
		status, err := domain.ParseStatus(string(step.Status))
		if err != nil {
			return Message{}, fmt.Errorf("%w: step: %v", ErrDecode, err)
		}
		step.Status = status
		msg.Kind = KindStepResult
		msg.Step = &step

	case KindScenarioCompleted:
		var p ScenarioCompletedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return Message{}, fmt.Errorf("%w: scenario payload: %v", ErrDecode, err)
		}
		if p.ScenarioID == "" {
			return Message{}, fmt.Errorf("%w: empty scenario id", ErrDecode)
		}
		msg.Kind = KindScenarioCompleted
		msg.ScenarioID = p.ScenarioID

	case KindSentinel:
		var p SentinelPayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return Message{}, fmt.Errorf("%w: sentinel payload: %v", ErrDecode, err)
			}
		}
		msg.Kind = KindSentinel
		msg.Reason = p.Reason

	default:
		msg.Kind = KindUnknown
		msg.RawKind = env.Kind
	}

	return msg, nil
}

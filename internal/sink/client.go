package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/flatware/internal/domain"
	"github.com/shaiso/flatware/internal/mq"
	"github.com/shaiso/flatware/internal/telemetry"
)

// Client отправляет результаты воркера в sink.
//
// Соединение устанавливается явно в NewClient и освобождается в Close.
// Отправка fire-and-forget: без подтверждения и без повторов.
// Ошибка отправки возвращается вызывающему и агрегатора не касается.
type Client struct {
	pusher mq.Pusher
	logger *slog.Logger
}

// NewClient подключается к sink.
func NewClient(ctx context.Context, transport mq.Transport, logger *slog.Logger) (*Client, error) {
	if transport == nil {
		return nil, ErrNoTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	pusher, err := transport.ConnectSink(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect sink: %w", err)
	}

	return &Client{
		pusher: pusher,
		logger: telemetry.WithComponent(logger, "sink-client"),
	}, nil
}

// Push кодирует и отправляет сообщение один раз.
func (c *Client) Push(ctx context.Context, msg mq.Message) error {
	body, err := mq.Encode(msg)
	if err != nil {
		return err
	}

	if err := c.pusher.Push(ctx, body); err != nil {
		telemetry.PushFailures.Inc()
		return fmt.Errorf("push %s: %w", msg.Kind, err)
	}

	c.logger.Debug("pushed", "kind", msg.Kind, "message_id", msg.ID)
	return nil
}

// PushStep отправляет результат шага.
func (c *Client) PushStep(ctx context.Context, step domain.StepResult) error {
	return c.Push(ctx, mq.NewStepResultMessage(step))
}

// PushScenarioCompleted отправляет завершение сценария.
func (c *Client) PushScenarioCompleted(ctx context.Context, scenarioID string) error {
	return c.Push(ctx, mq.NewScenarioCompletedMessage(scenarioID))
}

// PushSentinel просит агрегатор отменить прогон.
func (c *Client) PushSentinel(ctx context.Context, reason string) error {
	return c.Push(ctx, mq.NewSentinelMessage(reason))
}

// Close освобождает endpoint.
func (c *Client) Close() error {
	return c.pusher.Close()
}

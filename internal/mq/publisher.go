package mq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPTransport — Transport поверх RabbitMQ.
//
// sink — exclusive очередь на default exchange, die — fanout exchange.
// Отправляющие стороны описаны здесь, принимающие — в consumer.go.
type AMQPTransport struct {
	conn   *Connection
	logger *slog.Logger
}

// NewAMQPTransport создаёт транспорт на готовом соединении.
func NewAMQPTransport(conn *Connection, logger *slog.Logger) *AMQPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPTransport{
		conn:   conn,
		logger: logger,
	}
}

// ConnectSink открывает канал для отправки в sink.
//
// Существование очереди не проверяется: если агрегатора нет,
// сообщения молча отбрасываются брокером (mandatory=false).
func (t *AMQPTransport) ConnectSink(_ context.Context) (Pusher, error) {
	ch, err := t.conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	return &amqpPusher{ch: ch, logger: t.logger}, nil
}

// BindDie объявляет fanout exchange die и возвращает publisher.
func (t *AMQPTransport) BindDie(_ context.Context) (Broadcaster, error) {
	ch, err := t.conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	if err := declareDie(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	t.logger.Debug("die endpoint bound", "exchange", ExchangeDie)
	return &amqpBroadcaster{ch: ch, logger: t.logger}, nil
}

// amqpPusher публикует в очередь sink через default exchange.
type amqpPusher struct {
	ch     *amqp.Channel
	logger *slog.Logger

	closeOnce sync.Once
}

// Push публикует тело без подтверждения.
func (p *amqpPusher) Push(ctx context.Context, body []byte) error {
	err := p.ch.PublishWithContext(
		ctx,
		"",                // exchange (default)
		string(QueueSink), // routing key = имя очереди
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient, // без персистентности
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", QueueSink, err)
	}

	p.logger.Debug("pushed message", "queue", QueueSink, "bytes", len(body))
	return nil
}

// Close закрывает канал.
func (p *amqpPusher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.ch.Close()
	})
	return err
}

// amqpBroadcaster публикует в fanout exchange die.
type amqpBroadcaster struct {
	ch     *amqp.Channel
	logger *slog.Logger

	closeOnce sync.Once
}

// Broadcast отправляет тело всем текущим подписчикам.
func (b *amqpBroadcaster) Broadcast(ctx context.Context, body []byte) error {
	err := b.ch.PublishWithContext(
		ctx,
		string(ExchangeDie), // exchange
		"",                  // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", ExchangeDie, err)
	}

	b.logger.Debug("broadcast message", "exchange", ExchangeDie)
	return nil
}

// Close закрывает канал.
func (b *amqpBroadcaster) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.ch.Close()
	})
	return err
}

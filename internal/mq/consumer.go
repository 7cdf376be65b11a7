package mq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BindSink объявляет exclusive очередь sink и начинает потребление.
//
// Потребление с auto-ack: сообщение считается доставленным в момент
// отправки брокером, повторной доставки нет.
func (t *AMQPTransport) BindSink(_ context.Context) (Puller, error) {
	ch, err := t.conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	if err := declareSink(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	deliveries, err := ch.Consume(
		string(QueueSink), // queue
		"",                // consumer tag (auto-generated)
		true,              // auto-ack
		true,              // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w: consume %s: %v", ErrTransportUnavailable, QueueSink, err)
	}

	t.logger.Debug("sink endpoint bound", "queue", QueueSink)
	return newAMQPReceiver(ch, deliveries, t.logger, string(QueueSink)), nil
}

// SubscribeDie создаёт приватную очередь, привязанную к die.
func (t *AMQPTransport) SubscribeDie(_ context.Context) (Subscription, error) {
	ch, err := t.conn.OpenChannel()
	if err != nil {
		return nil, err
	}

	queue, err := bindSubscriber(ch)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}

	deliveries, err := ch.Consume(
		queue, // queue
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("%w: consume %s: %v", ErrTransportUnavailable, queue, err)
	}

	t.logger.Debug("subscribed to die", "queue", queue)
	return newAMQPReceiver(ch, deliveries, t.logger, queue), nil
}

// amqpReceiver перекладывает тела доставок в канал Messages.
// Реализует и Puller, и Subscription.
type amqpReceiver struct {
	ch     *amqp.Channel
	logger *slog.Logger
	queue  string

	out  chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newAMQPReceiver(ch *amqp.Channel, deliveries <-chan amqp.Delivery, logger *slog.Logger, queue string) *amqpReceiver {
	r := &amqpReceiver{
		ch:     ch,
		logger: logger,
		queue:  queue,
		out:    make(chan []byte),
		done:   make(chan struct{}),
	}
	go r.forward(deliveries)
	return r
}

// forward — цикл пересылки; закрывает out, когда доставки закончились.
func (r *amqpReceiver) forward(deliveries <-chan amqp.Delivery) {
	defer close(r.out)

	for {
		select {
		case <-r.done:
			return
		case d, ok := <-deliveries:
			if !ok {
				r.logger.Debug("deliveries channel closed", "queue", r.queue)
				return
			}
			select {
			case r.out <- d.Body:
			case <-r.done:
				return
			}
		}
	}
}

// Messages возвращает канал полученных тел.
func (r *amqpReceiver) Messages() <-chan []byte {
	return r.out
}

// Close останавливает потребление и закрывает канал.
func (r *amqpReceiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.ch.Close()
	})
	return err
}

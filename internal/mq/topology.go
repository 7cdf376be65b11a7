package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

const (
	// ExchangeDie — fanout обменник канала отмены.
	ExchangeDie Exchange = "flatware.die"

	// QueueSink — очередь потока результатов.
	QueueSink Queue = "flatware.sink"
)

// declareSink создаёт очередь sink.
//
// Очередь exclusive: её держит соединение агрегатора, второй агрегатор
// получит RESOURCE_LOCKED, а после завершения агрегатора очередь исчезает
// вместе с недоставленными сообщениями.
func declareSink(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		string(QueueSink), // name
		false,             // durable
		false,             // delete when unused
		true,              // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueSink, err)
	}
	return nil
}

// declareDie создаёт fanout обменник die. Объявление идемпотентно,
// его делают и publisher, и подписчики.
func declareDie(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		string(ExchangeDie), // name
		"fanout",            // type
		false,               // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeDie, err)
	}
	return nil
}

// bindSubscriber создаёт приватную очередь подписчика и привязывает её к die.
// Очередь существует только пока жив подписчик, поэтому backlog не копится.
func bindSubscriber(ch *amqp.Channel) (string, error) {
	if err := declareDie(ch); err != nil {
		return "", err
	}

	q, err := ch.QueueDeclare(
		"",    // name (генерирует сервер)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare subscriber queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,              // queue name
		"",                  // routing key (fanout его игнорирует)
		string(ExchangeDie), // exchange
		false,               // no-wait
		nil,                 // arguments
	)
	if err != nil {
		return "", fmt.Errorf("bind queue %s to %s: %w", q.Name, ExchangeDie, err)
	}

	return q.Name, nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Flatware RabbitMQ Topology:

    (default exchange)
    └── flatware.sink [exclusive]
            Producers: workers (push, fire-and-forget)
            Consumer:  sink server (auto-ack)

    flatware.die (fanout)
    └── amq.gen-* [exclusive, auto-delete] per worker
            Publisher: sink server or "flatware fire"
  `
}

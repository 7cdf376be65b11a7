// Package mq предоставляет транспорт между воркерами и агрегатором.
//
// Структура:
//   - transport.go  — интерфейсы двух шаблонов доставки и Transport
//   - message.go    — кодек конверта Message (step.result, scenario.completed, sentinel)
//   - connection.go — соединение с RabbitMQ
//   - topology.go   — объявление очереди sink и fanout exchange die
//   - publisher.go  — отправляющие стороны (Pusher, Broadcaster) поверх AMQP
//   - consumer.go   — принимающие стороны (Puller, Subscription) поверх AMQP
//   - memory.go     — in-process реализация тех же контрактов
//
// Шаблоны доставки:
//   - sink (many → one): много воркеров пушат, один агрегатор читает.
//     FIFO в пределах одного отправителя, at-most-once, без ack и redelivery.
//   - die (one → many): один publisher, много подписчиков. Сообщение получают
//     только подписчики, подключённые до отправки — backlog нет.
//
// Роли фиксированы: агрегатор биндит sink и die ровно один раз,
// воркеры только подключаются.
package mq

package mq

import "context"

// Endpoint — логические адреса endpoint'ов.
type Endpoint string

const (
	// EndpointSink — поток результатов от воркеров к агрегатору.
	EndpointSink Endpoint = "sink"

	// EndpointDie — широковещательный канал отмены.
	EndpointDie Endpoint = "die"
)

// Pusher — отправляющая сторона sink. Отправка fire-and-forget:
// Push не ждёт подтверждения и не блокируется, если получатель пропал.
type Pusher interface {
	Push(ctx context.Context, body []byte) error
	Close() error
}

// Puller — принимающая сторона sink.
// Канал Messages закрывается после Close или при потере соединения.
type Puller interface {
	Messages() <-chan []byte
	Close() error
}

// Broadcaster — публикующая сторона die.
type Broadcaster interface {
	Broadcast(ctx context.Context, body []byte) error
	Close() error
}

// Subscription — подписка на die.
// Получает только сообщения, отправленные после подписки.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// Transport создаёт endpoint'ы обоих шаблонов.
//
// BindSink и BindDie вызываются владельцем (агрегатором или отдельным
// canceller'ом) ровно один раз; ConnectSink и SubscribeDie — воркерами.
type Transport interface {
	BindSink(ctx context.Context) (Puller, error)
	ConnectSink(ctx context.Context) (Pusher, error)
	BindDie(ctx context.Context) (Broadcaster, error)
	SubscribeDie(ctx context.Context) (Subscription, error)
}

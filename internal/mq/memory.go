package mq

import (
	"context"
	"sync"
)

// DefaultSinkBuffer — буфер sink memory-транспорта по умолчанию.
const DefaultSinkBuffer = 1024

const defaultSubscriptionBuffer = 16

// MemoryTransport — Transport внутри одного процесса.
//
// Повторяет контракты AMQPTransport: sink биндится один раз,
// отправка никогда не блокируется, die доставляет только живым подписчикам.
type MemoryTransport struct {
	mu sync.Mutex

	sink      chan []byte
	sinkBound bool
	dieBound  bool
	subs      map[*memorySubscription]struct{}

	sinkBuffer int
}

// NewMemoryTransport создаёт транспорт с буфером sink по умолчанию.
func NewMemoryTransport() *MemoryTransport {
	return NewMemoryTransportWithBuffer(DefaultSinkBuffer)
}

// NewMemoryTransportWithBuffer создаёт транспорт с заданным буфером sink.
func NewMemoryTransportWithBuffer(size int) *MemoryTransport {
	if size <= 0 {
		size = DefaultSinkBuffer
	}
	return &MemoryTransport{
		subs:       make(map[*memorySubscription]struct{}),
		sinkBuffer: size,
	}
}

// BindSink биндит sink. Второй вызов до Close возвращает ErrAlreadyBound.
func (t *MemoryTransport) BindSink(_ context.Context) (Puller, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sinkBound {
		return nil, ErrAlreadyBound
	}

	t.sink = make(chan []byte, t.sinkBuffer)
	t.sinkBound = true

	return &memoryPuller{t: t, ch: t.sink}, nil
}

// ConnectSink подключается к sink. Подключение до bind допустимо.
func (t *MemoryTransport) ConnectSink(_ context.Context) (Pusher, error) {
	return &memoryPusher{t: t}, nil
}

// BindDie биндит die. Второй вызов до Close возвращает ErrAlreadyBound.
func (t *MemoryTransport) BindDie(_ context.Context) (Broadcaster, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dieBound {
		return nil, ErrAlreadyBound
	}
	t.dieBound = true

	return &memoryBroadcaster{t: t}, nil
}

// SubscribeDie подписывается на die.
func (t *MemoryTransport) SubscribeDie(_ context.Context) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &memorySubscription{
		t:  t,
		ch: make(chan []byte, defaultSubscriptionBuffer),
	}
	t.subs[sub] = struct{}{}
	return sub, nil
}

// Subscribers возвращает число живых подписчиков die.
func (t *MemoryTransport) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// push кладёт тело в sink без блокировки.
// Без живого получателя сообщение отбрасывается, как у брокера.
func (t *MemoryTransport) push(body []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sinkBound {
		return nil
	}

	select {
	case t.sink <- body:
		return nil
	default:
		return ErrBufferFull
	}
}

// broadcast рассылает тело всем подписчикам; переполненные пропускают его.
func (t *MemoryTransport) broadcast(body []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sub := range t.subs {
		select {
		case sub.ch <- body:
		default:
		}
	}
}

type memoryPusher struct {
	t *MemoryTransport

	mu     sync.Mutex
	closed bool
}

func (p *memoryPusher) Push(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	return p.t.push(body)
}

func (p *memoryPusher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type memoryPuller struct {
	t  *MemoryTransport
	ch chan []byte

	closeOnce sync.Once
}

func (p *memoryPuller) Messages() <-chan []byte {
	return p.ch
}

func (p *memoryPuller) Close() error {
	p.closeOnce.Do(func() {
		p.t.mu.Lock()
		defer p.t.mu.Unlock()

		p.t.sinkBound = false
		p.t.sink = nil
		close(p.ch)
	})
	return nil
}

type memoryBroadcaster struct {
	t *MemoryTransport

	mu     sync.Mutex
	closed bool
}

func (b *memoryBroadcaster) Broadcast(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	b.t.broadcast(body)
	return nil
}

func (b *memoryBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.t.mu.Lock()
	b.t.dieBound = false
	b.t.mu.Unlock()
	return nil
}

type memorySubscription struct {
	t  *MemoryTransport
	ch chan []byte

	closeOnce sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.t.mu.Lock()
		defer s.t.mu.Unlock()

		delete(s.t.subs, s)
		close(s.ch)
	})
	return nil
}

package fireable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/shaiso/flatware/internal/mq"
)

// Sentinel — зарезервированный payload отмены.
// Конверты mq — JSON объекты, поэтому с ними он не пересекается.
var Sentinel = []byte("seppuku")

// IsSentinel проверяет, является ли тело сигналом отмены.
func IsSentinel(body []byte) bool {
	return bytes.Equal(body, Sentinel)
}

// Fireable — подписка воркера на канал отмены die.
//
// Любой цикл воркера ждёт через AwaitNext «новое сообщение ИЛИ отмена»
// и выходит сразу, как только пришёл Sentinel.
type Fireable struct {
	die    mq.Subscription
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New подписывается на die. Подписку нужно сделать до начала работы:
// Sentinel, отправленный раньше, не доставляется.
func New(ctx context.Context, transport mq.Transport, logger *slog.Logger) (*Fireable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	die, err := transport.SubscribeDie(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe die: %w", err)
	}

	return &Fireable{
		die:    die,
		logger: logger,
	}, nil
}

// AwaitNext блокируется до первого сообщения из sources или die.
//
// Возвращает ровно одно сообщение, либо:
//   - ErrFired, если пришёл Sentinel (из любого источника);
//   - ctx.Err(), если контекст отменён;
//   - ErrSourceClosed, если закрылся источник или подписка.
//
// Уже доставленный Sentinel проверяется первым и выигрывает у ожидающей работы.
func (f *Fireable) AwaitNext(ctx context.Context, sources ...<-chan []byte) ([]byte, error) {
	for {
		body, err := f.awaitOnce(ctx, sources)
		if errors.Is(err, errIgnored) {
			continue
		}
		return body, err
	}
}

// awaitOnce — одна попытка мультиплексированного ожидания.
func (f *Fireable) awaitOnce(ctx context.Context, sources []<-chan []byte) ([]byte, error) {
	select {
	case body, ok := <-f.die.Messages():
		return f.fromDie(body, ok)
	default:
	}

	cases := make([]reflect.SelectCase, 0, len(sources)+2)
	cases = append(cases,
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(f.die.Messages())},
	)
	for _, src := range sources {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(src)})
	}

	chosen, value, ok := reflect.Select(cases)
	switch chosen {
	case 0:
		return nil, ctx.Err()
	case 1:
		var body []byte
		if ok {
			body = value.Bytes()
		}
		return f.fromDie(body, ok)
	}

	if !ok {
		return nil, fmt.Errorf("%w: source %d", ErrSourceClosed, chosen-2)
	}

	body := value.Bytes()
	if IsSentinel(body) {
		return nil, ErrFired
	}
	return body, nil
}

// fromDie разбирает сообщение из die. Посторонние сообщения в die
// не считаются ни отменой, ни работой.
func (f *Fireable) fromDie(body []byte, ok bool) ([]byte, error) {
	if !ok {
		return nil, fmt.Errorf("%w: die subscription", ErrSourceClosed)
	}
	if IsSentinel(body) {
		f.logger.Info("cancellation received")
		return nil, ErrFired
	}
	f.logger.Warn("ignoring unexpected message on die", "bytes", len(body))
	return nil, errIgnored
}

// UntilFired вызывает fn для каждого сообщения из sources, пока не придёт
// отмена. Отмена — нормальное завершение (nil). Подписка закрывается
// на любом пути выхода.
func (f *Fireable) UntilFired(ctx context.Context, sources []<-chan []byte, fn func([]byte) error) (err error) {
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		body, err := f.AwaitNext(ctx, sources...)
		switch {
		case err == nil:
		case errors.Is(err, ErrFired):
			return nil
		default:
			return err
		}

		if err := fn(body); err != nil {
			return err
		}
	}
}

// Close освобождает подписку. Повторные вызовы безопасны.
func (f *Fireable) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.die.Close()
	})
	return f.closeErr
}

// Fire — роль отдельного canceller'а: биндит die, рассылает Sentinel
// и освобождает endpoint.
func Fire(ctx context.Context, transport mq.Transport) error {
	die, err := transport.BindDie(ctx)
	if err != nil {
		return fmt.Errorf("bind die: %w", err)
	}
	defer die.Close()

	if err := die.Broadcast(ctx, Sentinel); err != nil {
		return fmt.Errorf("broadcast sentinel: %w", err)
	}
	return nil
}

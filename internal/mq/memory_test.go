package mq

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- MemoryTransport Tests ---

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case body, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return body
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func TestMemoryTransport_SinkFIFOPerProducer(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport()

	puller, err := tr.BindSink(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer puller.Close()

	a, _ := tr.ConnectSink(ctx)
	b, _ := tr.ConnectSink(ctx)

	for _, body := range []string{"a1", "a2", "a3"} {
		if err := a.Push(ctx, []byte(body)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if err := b.Push(ctx, []byte("b1")); err != nil {
		t.Fatalf("push: %v", err)
	}

	var fromA []string
	for i := 0; i < 4; i++ {
		body := string(receive(t, puller.Messages()))
		if body[0] == 'a' {
			fromA = append(fromA, body)
		}
	}

	if len(fromA) != 3 || fromA[0] != "a1" || fromA[1] != "a2" || fromA[2] != "a3" {
		t.Errorf("per-producer order broken: %v", fromA)
	}
}

func TestMemoryTransport_SinkBoundOnce(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport()

	puller, err := tr.BindSink(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := tr.BindSink(ctx); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("expected ErrAlreadyBound, got %v", err)
	}

	puller.Close()

	if _, err := tr.BindSink(ctx); err != nil {
		t.Errorf("rebinding after close should succeed: %v", err)
	}
}

func TestMemoryTransport_PushNeverBlocks(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransportWithBuffer(1)

	// Без получателя — отбрасывается.
	pusher, _ := tr.ConnectSink(ctx)
	if err := pusher.Push(ctx, []byte("lost")); err != nil {
		t.Errorf("push without consumer should be dropped silently: %v", err)
	}

	puller, _ := tr.BindSink(ctx)
	defer puller.Close()

	if err := pusher.Push(ctx, []byte("one")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := pusher.Push(ctx, []byte("two")); !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}

	pusher.Close()
	if err := pusher.Push(ctx, []byte("three")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestMemoryTransport_PullerCloseClosesChannel(t *testing.T) {
	tr := NewMemoryTransport()
	puller, _ := tr.BindSink(context.Background())

	puller.Close()
	puller.Close()

	if _, ok := <-puller.Messages(); ok {
		t.Error("channel should be closed")
	}
}

func TestMemoryTransport_BroadcastNoBacklog(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport()

	die, err := tr.BindDie(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer die.Close()

	early1, _ := tr.SubscribeDie(ctx)
	early2, _ := tr.SubscribeDie(ctx)

	if err := die.Broadcast(ctx, []byte("seppuku")); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	late, _ := tr.SubscribeDie(ctx)

	if got := string(receive(t, early1.Messages())); got != "seppuku" {
		t.Errorf("early1 got %q", got)
	}
	if got := string(receive(t, early2.Messages())); got != "seppuku" {
		t.Errorf("early2 got %q", got)
	}

	select {
	case body := <-late.Messages():
		t.Errorf("late subscriber must not receive backlog, got %q", body)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMemoryTransport_SubscriptionClose(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport()

	sub, _ := tr.SubscribeDie(ctx)
	if tr.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", tr.Subscribers())
	}

	sub.Close()
	sub.Close()

	if tr.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", tr.Subscribers())
	}
	if _, ok := <-sub.Messages(); ok {
		t.Error("subscription channel should be closed")
	}
}

func TestMemoryTransport_DieBoundOnce(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport()

	die, _ := tr.BindDie(ctx)
	if _, err := tr.BindDie(ctx); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("expected ErrAlreadyBound, got %v", err)
	}

	die.Close()
	if err := die.Broadcast(ctx, []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

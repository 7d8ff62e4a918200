package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestBroadcasterDeliversToGroupSubscribers(t *testing.T) {
	b := NewBroadcaster()
	alpha, cancelAlpha := b.Subscribe("alpha")
	defer cancelAlpha()
	beta, cancelBeta := b.Subscribe("beta")
	defer cancelBeta()

	b.Notify("alpha")

	select {
	case <-alpha:
	case <-time.After(time.Second):
		t.Fatalf("alpha subscriber was not notified")
	}
	select {
	case <-beta:
		t.Fatalf("beta subscriber should not be notified")
	default:
	}
}

func TestBroadcasterCoalescesBurstsWithoutBlocking(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe("")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Notify("")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("notify blocked on a slow subscriber")
	}

	<-ch
	select {
	case <-ch:
		t.Fatalf("expected a burst to coalesce into one signal")
	default:
	}
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe("g")
	_, other := b.Subscribe("g")
	if b.SubscriberCount("g") != 2 {
		t.Fatalf("expected 2 subscribers")
	}

	cancel()
	cancel()
	if b.SubscriberCount("g") != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", b.SubscriberCount("g"))
	}
	other()
	if b.SubscriberCount("g") != 0 {
		t.Fatalf("expected no subscribers")
	}
	b.Notify("g")
}

func TestPGListenerStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	listener := NewPGListener("postgres://bobalog@127.0.0.1:1/none?connect_timeout=1&sslmode=disable", NewBroadcaster(), logger)
	listener.retry = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := listener.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

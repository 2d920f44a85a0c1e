package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHub_SendReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	alice, bob := uuid.New(), uuid.New()
	ca := &Client{hub: hub, userID: alice, send: make(chan []byte, 1)}
	cb := &Client{hub: hub, userID: bob, send: make(chan []byte, 1)}
	hub.Register(ca)
	hub.Register(cb)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	if !hub.Send(alice, []byte("hello")) {
		t.Fatalf("send dropped")
	}

	select {
	case msg := <-ca.send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("alice did not receive the message")
	}

	select {
	case msg := <-cb.send:
		t.Fatalf("bob received %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterAndShutdownCloseChannels(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(done)
	}()

	u := uuid.New()
	c1 := &Client{hub: hub, userID: u, send: make(chan []byte, 1)}
	c2 := &Client{hub: hub, userID: u, send: make(chan []byte, 1)}
	hub.Register(c1)
	hub.Register(c2)
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	hub.Unregister(c1)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	if _, ok := <-c1.send; ok {
		t.Fatalf("c1 send channel still open")
	}
	if !hub.Connected(u) {
		t.Fatalf("user should still be connected through c2")
	}

	cancel()
	<-done
	if _, ok := <-c2.send; ok {
		t.Fatalf("c2 send channel still open after shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("clients remain after shutdown")
	}
}

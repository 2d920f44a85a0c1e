package notify

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	got  []Notification
	err  error
	boom bool
}

func (r *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	if r.boom {
		panic("dispatcher exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestNotifier_DeliversAsynchronously(t *testing.T) {
	d := &recordingDispatcher{}
	n := NewNotifier(d, time.Second, nil)

	n.Send(Notification{Type: TypeModeration, RecipientID: uuid.New()})
	if err := n.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d.count() != 1 {
		t.Fatalf("expected one dispatch, got %d", d.count())
	}

	n.Send(Notification{Type: TypeModeration})
	if d.count() != 1 {
		t.Fatalf("closed notifier must drop sends")
	}
}

func TestNotifier_SwallowsErrorsAndPanics(t *testing.T) {
	var buf syncBuffer
	logger := log.New(&buf, "", 0)

	failing := NewNotifier(&recordingDispatcher{err: errors.New("mailbox full")}, time.Second, logger)
	failing.Send(Notification{Type: TypeApplicationStatus})
	_ = failing.Close(context.Background())

	panicking := NewNotifier(&recordingDispatcher{boom: true}, time.Second, logger)
	panicking.Send(Notification{Type: TypeModeration})
	_ = panicking.Close(context.Background())

	out := buf.String()
	if !strings.Contains(out, "mailbox full") || !strings.Contains(out, "dispatcher panic") {
		t.Fatalf("expected both failures logged, got %q", out)
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Send(Notification{})
	if err := n.Close(context.Background()); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
}

type fakeSender struct {
	to uuid.UUID
	v  any
}

func (f *fakeSender) SendJSON(userID uuid.UUID, v any) error {
	f.to, f.v = userID, v
	return nil
}

func TestMulti_JoinsErrorsAndReachesAll(t *testing.T) {
	s := &fakeSender{}
	rec := &recordingDispatcher{err: errors.New("down")}
	recipient := uuid.New()

	err := Multi{HubDispatcher{Hub: s}, rec}.Dispatch(context.Background(), Notification{RecipientID: recipient})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if s.to != recipient {
		t.Fatalf("hub not reached")
	}
	if rec.count() != 1 {
		t.Fatalf("second dispatcher not reached")
	}
}

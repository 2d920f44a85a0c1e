// Package notify delivers best-effort side-channel messages about moderation and
// application outcomes. Delivery never reports failure to the caller.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"classifieds/internal/metrics"

	"github.com/google/uuid"
)

type Type string

const (
	TypeModeration        Type = "moderation"
	TypeApplicationNew    Type = "application_received"
	TypeApplicationStatus Type = "application_status"
)

type Notification struct {
	Type        Type      `json:"type"`
	RecipientID uuid.UUID `json:"recipientId"`
	PostingID   uuid.UUID `json:"postingId"`
	PostingKind string    `json:"postingKind"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	At          time.Time `json:"at"`
}

// Dispatcher is a delivery channel. Implementations may block; the Notifier bounds
// each call with a timeout.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// Notifier runs dispatches asynchronously. Send returns immediately; errors and panics
// from the dispatcher are logged and counted, never returned.
type Notifier struct {
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *log.Logger

	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
}

func NewNotifier(d Dispatcher, timeout time.Duration, logger *log.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{dispatcher: d, timeout: timeout, logger: logger}
}

func (n *Notifier) Send(msg Notification) {
	if n == nil || n.dispatcher == nil {
		return
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		err := n.dispatch(msg)
		metrics.RecordNotification(string(msg.Type), err)
		if err != nil && n.logger != nil {
			n.logger.Printf("[Notify] dispatch failed | type=%s recipient=%s posting_id=%s err=%v",
				msg.Type, msg.RecipientID, msg.PostingID, err)
		}
	}()
}

func (n *Notifier) dispatch(msg Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	return n.dispatcher.Dispatch(ctx, msg)
}

// Close stops accepting notifications and waits for in-flight ones until ctx ends.
func (n *Notifier) Close(ctx context.Context) error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

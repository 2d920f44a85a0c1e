package notify

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

// LogDispatcher writes notifications to the log. It is the default sink when no other
// channel is configured.
type LogDispatcher struct {
	Logger *log.Logger
}

func (d LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	if d.Logger == nil {
		return nil
	}
	d.Logger.Printf("[Notify] %s | recipient=%s posting_id=%s kind=%s status=%s",
		n.Type, n.RecipientID, n.PostingID, n.PostingKind, n.Status)
	return nil
}

// Sender pushes a JSON value to every live connection of a user.
type Sender interface {
	SendJSON(userID uuid.UUID, v any) error
}

// HubDispatcher delivers to the recipient's websocket connections.
type HubDispatcher struct {
	Hub Sender
}

func (d HubDispatcher) Dispatch(_ context.Context, n Notification) error {
	if d.Hub == nil {
		return nil
	}
	return d.Hub.SendJSON(n.RecipientID, n)
}

// Multi fans a notification out to every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, n Notification) error {
	var errs []error
	for _, d := range m {
		if err := d.Dispatch(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

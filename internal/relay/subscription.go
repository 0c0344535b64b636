package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seaholm/nostrkit/internal/event"
)

// Subscription is one REQ in flight on a channel. Events arrive on
// Events until the relay reports end of stored events (EOSE), terminates
// the subscription (CLOSED), or the channel goes away; in every case
// Events is closed. Events carrying a different subscription id are
// dropped, not misrouted.
type Subscription struct {
	// ID is the wire subscription id.
	ID string

	// Events delivers the subscription's events and is closed at end of
	// stream.
	Events <-chan event.Event
}

// Subscribe sends ["REQ", id, filters...] on the channel and returns the
// resulting subscription. The pump goroutine exits when the stream ends
// or ctx is cancelled.
func Subscribe(ctx context.Context, ch Channel, filters []Filter) (*Subscription, error) {
	id := uuid.NewString()

	frame, err := MarshalReq(id, filters)
	if err != nil {
		return nil, fmt.Errorf("marshal REQ: %w", err)
	}
	if err := ch.Send(ctx, frame); err != nil {
		return nil, fmt.Errorf("send REQ: %w", err)
	}

	events := make(chan event.Event, messageBuffer)
	go pump(ctx, ch, id, events)

	return &Subscription{ID: id, Events: events}, nil
}

// pump dispatches inbound envelopes for one subscription id until the
// stream ends.
func pump(ctx context.Context, ch Channel, id string, events chan<- event.Event) {
	defer close(events)
	defer sendClose(ch, id)

	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-ch.Messages():
			if !ok {
				return
			}

			env, err := ParseEnvelope(data)
			if err != nil {
				slog.Debug("discarding unparseable frame", "subscription", id, "error", err)
				continue
			}

			switch e := env.(type) {
			case EventEnvelope:
				if e.SubscriptionID != id {
					continue
				}
				select {
				case events <- e.Event:
				case <-ctx.Done():
					return
				}

			case EOSEEnvelope:
				if e.SubscriptionID == id {
					return
				}

			case ClosedEnvelope:
				if e.SubscriptionID == id {
					slog.Debug("subscription closed by relay", "subscription", id, "reason", e.Reason)
					return
				}

			case NoticeEnvelope:
				slog.Debug("relay notice", "subscription", id, "message", e.Message)
			}
		}
	}
}

// sendClose tells the relay the subscription is finished. Best effort:
// the channel may already be gone.
func sendClose(ch Channel, id string) {
	frame, err := MarshalClose(id)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = ch.Send(ctx, frame)
}

// Query opens a channel to the endpoint, runs one subscription to
// completion, and returns the stored events it produced. The context
// bounds the whole operation; on cancellation the partial result is
// discarded and ctx.Err() is returned so callers can tell cancellation
// from an empty relay.
func Query(ctx context.Context, d Dialer, endpoint string, filters []Filter) ([]event.Event, error) {
	ch, err := d.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", endpoint, err)
	}
	defer ch.Close()

	sub, err := Subscribe(ctx, ch, filters)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", endpoint, err)
	}

	var out []event.Event
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-sub.Events:
			if !ok {
				return out, nil
			}
			out = append(out, ev)
		}
	}
}

package relay

import (
	"encoding/json"
	"fmt"

	"github.com/seaholm/nostrkit/internal/event"
)

// Envelope is one inbound protocol message, a closed tagged variant over
// the array-shaped wire frames. Dispatching on the concrete type replaces
// per-message callback registries.
type Envelope interface {
	// Label returns the frame's leading type string.
	Label() string
}

// EventEnvelope carries one event for a subscription.
type EventEnvelope struct {
	SubscriptionID string
	Event          event.Event
}

// EOSEEnvelope signals the end of stored events for a subscription.
type EOSEEnvelope struct {
	SubscriptionID string
}

// ClosedEnvelope signals that the relay terminated a subscription.
type ClosedEnvelope struct {
	SubscriptionID string
	Reason         string
}

// NoticeEnvelope is a free-form human-readable message from the relay.
type NoticeEnvelope struct {
	Message string
}

func (EventEnvelope) Label() string  { return "EVENT" }
func (EOSEEnvelope) Label() string   { return "EOSE" }
func (ClosedEnvelope) Label() string { return "CLOSED" }
func (NoticeEnvelope) Label() string { return "NOTICE" }

// ParseEnvelope decodes one inbound text frame. Unknown labels are an
// error so callers can log and skip them explicitly.
func ParseEnvelope(data []byte) (Envelope, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("envelope is not a JSON array: %w", err)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("envelope is empty")
	}

	var label string
	if err := json.Unmarshal(arr[0], &label); err != nil {
		return nil, fmt.Errorf("envelope label: %w", err)
	}

	switch label {
	case "EVENT":
		if len(arr) != 3 {
			return nil, fmt.Errorf("EVENT envelope has %d elements, want 3", len(arr))
		}
		var env EventEnvelope
		if err := json.Unmarshal(arr[1], &env.SubscriptionID); err != nil {
			return nil, fmt.Errorf("EVENT subscription id: %w", err)
		}
		if err := json.Unmarshal(arr[2], &env.Event); err != nil {
			return nil, fmt.Errorf("EVENT payload: %w", err)
		}
		return env, nil

	case "EOSE":
		if len(arr) != 2 {
			return nil, fmt.Errorf("EOSE envelope has %d elements, want 2", len(arr))
		}
		var env EOSEEnvelope
		if err := json.Unmarshal(arr[1], &env.SubscriptionID); err != nil {
			return nil, fmt.Errorf("EOSE subscription id: %w", err)
		}
		return env, nil

	case "CLOSED":
		if len(arr) != 3 {
			return nil, fmt.Errorf("CLOSED envelope has %d elements, want 3", len(arr))
		}
		var env ClosedEnvelope
		if err := json.Unmarshal(arr[1], &env.SubscriptionID); err != nil {
			return nil, fmt.Errorf("CLOSED subscription id: %w", err)
		}
		if err := json.Unmarshal(arr[2], &env.Reason); err != nil {
			return nil, fmt.Errorf("CLOSED reason: %w", err)
		}
		return env, nil

	case "NOTICE":
		if len(arr) != 2 {
			return nil, fmt.Errorf("NOTICE envelope has %d elements, want 2", len(arr))
		}
		var env NoticeEnvelope
		if err := json.Unmarshal(arr[1], &env.Message); err != nil {
			return nil, fmt.Errorf("NOTICE message: %w", err)
		}
		return env, nil

	default:
		return nil, fmt.Errorf("unknown envelope label %q", label)
	}
}

// MarshalReq renders the outbound subscription request frame
// ["REQ", subscription_id, filter...].
func MarshalReq(subscriptionID string, filters []Filter) ([]byte, error) {
	frame := make([]any, 0, 2+len(filters))
	frame = append(frame, "REQ", subscriptionID)
	for _, f := range filters {
		frame = append(frame, f)
	}
	return json.Marshal(frame)
}

// MarshalClose renders the outbound ["CLOSE", subscription_id] frame.
func MarshalClose(subscriptionID string) ([]byte, error) {
	return json.Marshal([]any{"CLOSE", subscriptionID})
}

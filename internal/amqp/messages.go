package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"daybook/internal/core"
)

// ActivityMessage is the wire form of one dashboard mutation.
type ActivityMessage struct {
	Kind      string    `json:"kind"`
	Identity  string    `json:"identity"`
	EntityID  string    `json:"entity_id,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivityMessage converts an activity, stamping it with the current time
// when it carries none.
func NewActivityMessage(a core.Activity) *ActivityMessage {
	ts := a.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ActivityMessage{
		Kind:      string(a.Kind),
		Identity:  a.Identity.String(),
		EntityID:  a.EntityID,
		Date:      a.Date.String(),
		Timestamp: ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Activity converts the message back into an activity. Unknown kinds and
// malformed dates are rejected.
func (m *ActivityMessage) Activity() (core.Activity, error) {
	a := core.Activity{
		Kind:     core.ActivityKind(m.Kind),
		Identity: core.Identity(m.Identity),
		EntityID: m.EntityID,
		At:       m.Timestamp,
	}
	if !a.Kind.Valid() {
		return core.Activity{}, fmt.Errorf("unknown activity kind %q", m.Kind)
	}
	if m.Date != "" {
		d, err := core.ParseDate(m.Date)
		if err != nil {
			return core.Activity{}, err
		}
		a.Date = d
	}
	return a, nil
}

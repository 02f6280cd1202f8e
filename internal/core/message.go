package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is an immutable chat entry stored in exactly one room.
// It is serialized as a 3-element array: [timestampMillis, sender, text].
type Message struct {
	Timestamp int64
	Sender    string
	Text      string
}

// Time returns the message timestamp as time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// MarshalJSON encodes the message in its snapshot triple form.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{m.Timestamp, m.Sender, m.Text})
}

// UnmarshalJSON decodes a [timestampMillis, sender, text] triple.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("message: expected 3 fields, got %d", len(raw))
	}

	var out Message
	if err := json.Unmarshal(raw[0], &out.Timestamp); err != nil {
		return fmt.Errorf("message timestamp: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Sender); err != nil {
		return fmt.Errorf("message sender: %w", err)
	}
	if err := json.Unmarshal(raw[2], &out.Text); err != nil {
		return fmt.Errorf("message text: %w", err)
	}

	*m = out
	return nil
}

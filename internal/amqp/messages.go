package amqp

import (
	"encoding/json"
	"time"
)

const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// Message carries one calendar-sync task. Sync messages hold only the
// assignment id; the worker fetches the current assignment and shift from
// the database so stale payloads cannot overwrite newer state. Delete
// messages carry the already-detached event id.
type Message struct {
	Kind         string    `json:"kind"`
	AssignmentID int64     `json:"assignment_id,omitempty"`
	EventID      string    `json:"event_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSyncMessage creates a message requesting sync of one assignment.
func NewSyncMessage(assignmentID int64) *Message {
	return &Message{
		Kind:         KindSync,
		AssignmentID: assignmentID,
		Timestamp:    time.Now(),
	}
}

// NewDeleteMessage creates a message requesting deletion of one event.
func NewDeleteMessage(eventID string) *Message {
	return &Message{
		Kind:      KindDelete,
		EventID:   eventID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON creates a message from JSON bytes.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

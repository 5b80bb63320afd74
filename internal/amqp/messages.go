package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageKind selects what the worker does with a record id.
type MessageKind string

const (
	// KindRecordSync asks the worker to export the record; the worker
	// fetches the full record from the store by id.
	KindRecordSync MessageKind = "record.sync"
	// KindRecordDelete asks the worker to remove the record's exported row.
	KindRecordDelete MessageKind = "record.delete"
)

// Message is the lightweight envelope published on every record change.
// It carries only the id; the worker reads the current record state from
// the store, so a stale message can never export stale data.
type Message struct {
	Kind      MessageKind `json:"kind"`
	RecordID  string      `json:"recordId"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewRecordSyncMessage creates a sync message for a saved record.
func NewRecordSyncMessage(recordID string) *Message {
	return &Message{
		Kind:      KindRecordSync,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// NewRecordDeleteMessage creates a delete message for a removed record.
func NewRecordDeleteMessage(recordID string) *Message {
	return &Message{
		Kind:      KindRecordDelete,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON parses a message from JSON bytes and rejects unknown
// kinds so a bad payload is dead-lettered instead of half-processed.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindRecordSync, KindRecordDelete:
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	if msg.RecordID == "" {
		return nil, fmt.Errorf("message has no record id")
	}
	return &msg, nil
}

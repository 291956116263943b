package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// payload is the JSON form of an Event in the outbox and on Kafka.
type payload struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Timestamp  string   `json:"timestamp"`
	Action     string   `json:"action"`
	Kind       string   `json:"kind,omitempty"`
	SubjectID  string   `json:"subject_id,omitempty"`
	RelatedIDs []string `json:"related_ids,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	RequestID  string   `json:"request_id,omitempty"`
	ActorID    string   `json:"actor_id,omitempty"`
}

// Marshal encodes an event for the outbox.
func Marshal(e Event) ([]byte, error) {
	b, err := json.Marshal(payload{
		ID:         e.ID.String(),
		Category:   string(e.Category),
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:     e.Action,
		Kind:       e.Kind,
		SubjectID:  e.SubjectID,
		RelatedIDs: e.RelatedIDs,
		Reason:     e.Reason,
		RequestID:  e.RequestID,
		ActorID:    e.ActorID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return b, nil
}

// Unmarshal decodes an event written by Marshal.
func Unmarshal(raw []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return Event{}, fmt.Errorf("parse event id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse event timestamp: %w", err)
	}
	return Event{
		ID:         id,
		Category:   EventCategory(p.Category),
		Timestamp:  ts,
		Action:     p.Action,
		Kind:       p.Kind,
		SubjectID:  p.SubjectID,
		RelatedIDs: p.RelatedIDs,
		Reason:     p.Reason,
		RequestID:  p.RequestID,
		ActorID:    p.ActorID,
	}, nil
}

// OutboxEntry is an event waiting to be relayed to Kafka.
type OutboxEntry struct {
	ID uuid.UUID
	// Key partitions the topic; events about one entity stay ordered.
	Key       string
	EventType string
	Payload   []byte
}

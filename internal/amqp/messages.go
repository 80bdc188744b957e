package amqp

import (
	"encoding/json"
	"time"
)

// Activity kinds published on mutations.
const (
	KindClientCreated  = "client.created"
	KindClientDeleted  = "client.deleted"
	KindProjectCreated = "project.created"
	KindProjectUpdated = "project.updated"
	KindProjectDeleted = "project.deleted"
	KindTaskCreated    = "task.created"
	KindTaskUpdated    = "task.updated"
	KindTaskDeleted    = "task.deleted"
	KindTimerStarted   = "timer.started"
	KindTimerStopped   = "timer.stopped"
	KindEntryCreated   = "entry.created"
)

// ActivityMessage is the event envelope the worker turns into feed records.
// It carries just enough to render a feed line without a store lookup.
type ActivityMessage struct {
	Kind       string    `json:"kind"`
	OwnerID    string    `json:"ownerId"`
	EntityID   string    `json:"entityId"`
	EntityName string    `json:"entityName,omitempty"`
	Duration   int64     `json:"duration,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewActivityMessage(kind, ownerID, entityID, entityName string) *ActivityMessage {
	return &ActivityMessage{
		Kind:       kind,
		OwnerID:    ownerID,
		EntityID:   entityID,
		EntityName: entityName,
		Timestamp:  time.Now().UTC(),
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

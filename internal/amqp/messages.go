package amqp

import (
	"encoding/json"
	"time"
)

// DocumentSyncMessage tells the mirror worker that a new document revision
// has been persisted locally. It carries only the revision; the worker
// reloads the full document from the store.
type DocumentSyncMessage struct {
	HouseholdID string    `json:"householdId"`
	Revision    int64     `json:"revision"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewDocumentSyncMessage creates a sync message for the given revision.
func NewDocumentSyncMessage(householdID string, revision int64) *DocumentSyncMessage {
	return &DocumentSyncMessage{
		HouseholdID: householdID,
		Revision:    revision,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DocumentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentSyncMessageFromJSON creates a message from JSON bytes.
func DocumentSyncMessageFromJSON(data []byte) (*DocumentSyncMessage, error) {
	var msg DocumentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the sync worker to mirror one ledger entry. It
// carries only the ID and version; the worker fetches the full entry from
// the database. Version 0 means "whatever is current".
type EntrySyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// EntryDeleteMessage asks the sync worker to remove a mirrored entry.
type EntryDeleteMessage struct {
	ID        string    `json:"id"`
	Deleted   bool      `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id string, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewEntryDeleteMessage(id string) *EntryDeleteMessage {
	return &EntryDeleteMessage{
		ID:        id,
		Deleted:   true,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func EntryDeleteMessageFromJSON(data []byte) (*EntryDeleteMessage, error) {
	var msg EntryDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

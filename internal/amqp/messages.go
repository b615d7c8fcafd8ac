package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// RefreshMessage announces that the source tables changed and cached
// snapshots should be dropped.
type RefreshMessage struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshMessage creates a refresh message stamped with the current time.
func NewRefreshMessage(source string) *RefreshMessage {
	return &RefreshMessage{
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes a message; the source must be set.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.Source) == "" {
		return nil, errors.New("refresh message without source")
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"gasledger/internal/core"
)

var ErrInvalidMessage = errors.New("invalid ledger changed message")

// LedgerChangedMessage announces that the ledger was saved. It carries only a
// summary; consumers read the ledger itself from storage.
type LedgerChangedMessage struct {
	ID         string    `json:"id"`
	ActiveDate string    `json:"active_date"`
	Sales      int       `json:"sales"`
	Expenses   int       `json:"expenses"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(state core.LedgerState) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:         uuid.NewString(),
		ActiveDate: state.ActiveDate,
		Sales:      len(state.Sales),
		Expenses:   len(state.Expenses),
		Timestamp:  time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes data and requires a UUID id.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, errors.Join(ErrInvalidMessage, err)
	}
	return &msg, nil
}

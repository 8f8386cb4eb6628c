package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"painel/internal/core"
)

const messageDateLayout = "2006-01-02"

// ErrInvalidMessage marks a message that can never be processed. Consumers
// drop such messages instead of requeueing them.
var ErrInvalidMessage = errors.New("invalid transaction message")

// TransactionMessage carries one transaction to the ingest worker. ID is a
// ULID the store uses to ignore redeliveries.
type TransactionMessage struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionMessage wraps t in a message with a fresh ID.
func NewTransactionMessage(t core.Transaction) *TransactionMessage {
	return &TransactionMessage{
		ID:          ulid.Make().String(),
		Date:        t.Date.Format(messageDateLayout),
		Name:        t.Name,
		Category:    t.Category,
		AmountCents: t.Amount.Cents,
		Kind:        string(t.Kind),
		Status:      t.Status,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON decodes a message body.
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	return &msg, nil
}

// Transaction converts the message back into a validated transaction.
func (m *TransactionMessage) Transaction() (core.Transaction, error) {
	d, err := time.Parse(messageDateLayout, m.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: date %q", ErrInvalidMessage, m.Date)
	}
	kind, err := core.ParseKind(m.Kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	t := core.Transaction{
		Date:     core.Date{Time: d},
		Name:     m.Name,
		Category: m.Category,
		Amount:   core.Money{Cents: m.AmountCents},
		Kind:     kind,
		Status:   core.NormalizeStatus(m.Status),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return t, nil
}

package amqp

import (
	"errors"
	"testing"
	"time"

	"painel/internal/core"
)

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2024, 3, 10),
		Name:     "Conta de luz",
		Category: "Casa",
		Amount:   core.Money{Cents: 18035},
		Kind:     core.Outcome,
		Status:   core.StatusPending,
	}
}

func TestNewTransactionMessage(t *testing.T) {
	msg := NewTransactionMessage(sampleTransaction())

	if len(msg.ID) != 26 {
		t.Errorf("expected a ULID, got %q", msg.ID)
	}
	if msg.Date != "2024-03-10" || msg.Kind != "outcome" || msg.AmountCents != 18035 {
		t.Errorf("unexpected message: %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
	if other := NewTransactionMessage(sampleTransaction()); other.ID == msg.ID {
		t.Error("message ids should be unique")
	}
}

func TestTransactionMessage_JSON(t *testing.T) {
	msg := NewTransactionMessage(sampleTransaction())

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := TransactionMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("TransactionMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed %+v, want %+v", parsed, msg)
	}

	got, err := parsed.Transaction()
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if got != sampleTransaction() {
		t.Errorf("round trip got %+v", got)
	}
}

func TestTransactionMessage_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `{"id": 1`,
		"wrong type": `{"id": "x", "amount_cents": "ten"}`,
		"missing id": `{"date": "2024-01-01"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := TransactionMessageFromJSON([]byte(body)); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}

	bad := []TransactionMessage{
		{ID: "a", Date: "10/03/2024", Name: "x", AmountCents: 1, Kind: "income"},
		{ID: "a", Date: "2024-03-10", Name: "x", AmountCents: 1, Kind: "transfer"},
		{ID: "a", Date: "2024-03-10", Name: "x", AmountCents: 0, Kind: "income"},
		{ID: "a", Date: "2024-03-10", Name: " ", AmountCents: 1, Kind: "income"},
	}
	for _, m := range bad {
		if _, err := m.Transaction(); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("%+v: expected ErrInvalidMessage, got %v", m, err)
		}
	}
}

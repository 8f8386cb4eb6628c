// Package worker stores transactions received from the message queue.
package worker

import (
	"context"
	"fmt"

	"painel/internal/amqp"
	"painel/internal/core"
	applog "painel/internal/log"
)

// Inserter stores a transaction once per message id.
type Inserter interface {
	InsertTransaction(ctx context.Context, t core.Transaction, messageID string) (ref string, inserted bool, err error)
}

// Ingest handles transaction messages.
type Ingest struct {
	store  Inserter
	logger *applog.Logger
}

func NewIngest(store Inserter, logger *applog.Logger) *Ingest {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Ingest{store: store, logger: logger.WithComponent(applog.ComponentWorker)}
}

// Handle validates msg and stores its transaction. Invalid messages return
// an error wrapping amqp.ErrInvalidMessage; redelivered messages are
// acknowledged without a second insert.
func (w *Ingest) Handle(ctx context.Context, msg *amqp.TransactionMessage) error {
	t, err := msg.Transaction()
	if err != nil {
		return err
	}

	ref, inserted, err := w.store.InsertTransaction(ctx, t, msg.ID)
	if err != nil {
		return fmt.Errorf("store transaction %s: %w", msg.ID, err)
	}
	if !inserted {
		w.logger.InfoContext(ctx, "Transaction already ingested", "id", msg.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Transaction ingested",
		"id", msg.ID,
		"ref", ref,
		applog.FieldYear, t.Date.Year(),
		applog.FieldMonth, t.Date.Month(),
		applog.FieldOperation, applog.OpIngest)
	return nil
}

package sheets

import (
	"context"

	"painel/internal/core"
)

// Ports for transaction sources.
type (
	// TransactionLister returns every transaction recorded for a year.
	TransactionLister interface {
		ListTransactions(ctx context.Context, year int) ([]core.Transaction, error)
	}

	// TransactionAppender stores a transaction and returns a reference to
	// where it was written.
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (ref string, err error)
	}

	TransactionStore interface {
		TransactionLister
		TransactionAppender
	}
)

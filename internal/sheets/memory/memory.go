package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// SeedFile is the CSV read by NewFromFiles, relative to the data directory.
const SeedFile = "seed_transactions.csv"

// Store keeps transactions in memory.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var _ ports.TransactionStore = (*Store)(nil)

func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// NewFromFiles seeds a store from base/seed_transactions.csv. A missing
// file yields an empty store.
func NewFromFiles(base string) (*Store, error) {
	f, err := os.Open(filepath.Join(base, SeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	txs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", f.Name(), err)
	}
	return New(txs...), nil
}

// ReadCSV parses transaction rows. A leading header row, blank lines and
// lines starting with '#' are skipped.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []core.Transaction
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 1 && ports.IsHeader(rec) {
			continue
		}
		t, err := ports.ParseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		out = append(out, t)
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// AppendTransaction stores t and returns a synthetic row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListTransactions returns the year's transactions ordered by date.
func (s *Store) ListTransactions(_ context.Context, year int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.Date.Year() == year {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

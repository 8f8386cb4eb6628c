package aggregate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

type fakeLister struct {
	calls   atomic.Int64
	release chan struct{}
	txs     []core.Transaction
	err     error
}

func (f *fakeLister) ListTransactions(ctx context.Context, year int) ([]core.Transaction, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.txs, f.err
}

func newTestService(src *fakeLister) *Service {
	s := NewService(src, nil)
	s.now = func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestServiceDefaults(t *testing.T) {
	s := newTestService(&fakeLister{txs: fixture()})
	d, err := s.Dashboard(context.Background(), core.Query{Month: 3})
	require.NoError(t, err)
	assert.Len(t, d.Tx, 5)
	assert.Equal(t, core.FormatCents(500000), d.KPIs.Income())
}

func TestServiceSharesConcurrentReads(t *testing.T) {
	src := &fakeLister{txs: fixture(), release: make(chan struct{})}
	s := newTestService(src)

	const n = 8
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.Dashboard(context.Background(), core.Query{Year: 2024, Month: i%2 + 1, Limit: 25})
			assert.NoError(t, err)
			assert.Len(t, d.Series.Months, 12)
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())

	// Nothing is cached once the read completes.
	_, err := s.Dashboard(context.Background(), core.Query{Year: 2024})
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestServiceSourceError(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := newTestService(&fakeLister{err: boom})
	_, err := s.Dashboard(context.Background(), core.Query{Year: 2024})
	assert.ErrorIs(t, err, boom)
}

func TestServiceInvalidQuery(t *testing.T) {
	src := &fakeLister{}
	s := newTestService(src)
	_, err := s.Dashboard(context.Background(), core.Query{Year: 2024, Month: 14})
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	assert.Zero(t, src.calls.Load())
}

func TestServiceCallerCancels(t *testing.T) {
	src := &fakeLister{release: make(chan struct{})}
	defer close(src.release)
	s := newTestService(src)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Dashboard(ctx, core.Query{Year: 2024})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

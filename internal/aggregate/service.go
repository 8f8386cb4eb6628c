package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"painel/internal/core"
	applog "painel/internal/log"
	"painel/internal/sheets"
)

// Service answers dashboard queries from a transaction source. Concurrent
// queries for the same year share a single source read; nothing is cached
// once the read completes.
type Service struct {
	src    sheets.TransactionLister
	group  singleflight.Group
	logger *applog.Logger
	now    func() time.Time
}

func NewService(src sheets.TransactionLister, logger *applog.Logger) *Service {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Service{
		src:    src,
		logger: logger.WithComponent(applog.ComponentAggregate),
		now:    time.Now,
	}
}

// Dashboard builds the payload for q, defaulting the year and limit.
func (s *Service) Dashboard(ctx context.Context, q core.Query) (core.Dashboard, error) {
	q = q.Normalize(s.now())
	if err := q.Validate(); err != nil {
		return core.Dashboard{}, err
	}

	start := time.Now()
	ch := s.group.DoChan(strconv.Itoa(q.Year), func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		return s.src.ListTransactions(context.WithoutCancel(ctx), q.Year)
	})

	select {
	case <-ctx.Done():
		return core.Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.ErrorContext(ctx, "Transaction source failed", applog.FieldYear, q.Year, applog.FieldError, res.Err)
			return core.Dashboard{}, fmt.Errorf("list transactions for %d: %w", q.Year, res.Err)
		}
		txs := res.Val.([]core.Transaction)
		fields := applog.NewFields().WithPeriod(q.Year, q.Month, q.Limit)
		fields["transactions"] = len(txs)
		fields["shared"] = res.Shared
		fields[applog.FieldDuration] = time.Since(start).Milliseconds()
		s.logger.DebugContext(ctx, "Dashboard aggregated", fields.ToSlice()...)
		return Build(txs, q), nil
	}
}

package core

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLimit is the number of transactions requested when none is given.
const DefaultLimit = 25

var ErrInvalidLimit = errors.New("invalid limit")

// Query selects the period and list size of a dashboard payload.
// Month 0 means the whole year.
type Query struct {
	Year  int
	Month int
	Limit int
}

// Normalize fills a zero year with the current one and a zero limit with
// DefaultLimit. Other fields are left as they are.
func (q Query) Normalize(now time.Time) Query {
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

func (q Query) Validate() error {
	if q.Month < 0 || q.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, q.Month)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	return nil
}

// AllMonths reports whether the query spans the whole year.
func (q Query) AllMonths() bool {
	return q.Month == 0
}

// Contains reports whether d falls in the queried period.
func (q Query) Contains(d Date) bool {
	if d.Year() != q.Year {
		return false
	}
	return q.AllMonths() || d.Month() == q.Month
}

// MonthNames are the short pt-BR month labels used across the dashboard.
var MonthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

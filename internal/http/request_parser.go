// Package http serves the dashboard page, its JSON API and the
// aggregation endpoint.
//
// This file parses the dashboard query parameters.

package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"painel/internal/core"
	"painel/internal/fetch"
)

// maxLimit caps the number of transactions a client may ask for.
const maxLimit = 1000

var ErrInvalidParam = errors.New("invalid query parameter")

// MonthDefault says what a request without mes selects.
type MonthDefault int

const (
	// CurrentMonth is the dashboard page default.
	CurrentMonth MonthDefault = iota
	// WholeYear is the aggregation endpoint default.
	WholeYear
)

// ParseQuery reads ano, mes and limit from query. Missing values take the
// current year, the month given by md and defLimit. mes=0 always selects the
// whole year.
func ParseQuery(query url.Values, now time.Time, md MonthDefault, defLimit int) (core.Query, error) {
	q := core.Query{Year: now.Year(), Limit: defLimit}
	if md == CurrentMonth {
		q.Month = int(now.Month())
	}

	var err error
	if q.Year, err = intParam(query, fetch.ParamYear, q.Year); err != nil {
		return core.Query{}, err
	}
	if q.Month, err = intParam(query, fetch.ParamMonth, q.Month); err != nil {
		return core.Query{}, err
	}
	if q.Limit, err = intParam(query, fetch.ParamLimit, q.Limit); err != nil {
		return core.Query{}, err
	}

	if q.Year < 1 || q.Year > 9999 {
		return core.Query{}, fmt.Errorf("%w: %s=%d", ErrInvalidParam, fetch.ParamYear, q.Year)
	}
	if q.Limit > maxLimit {
		return core.Query{}, fmt.Errorf("%w: %s above %d", ErrInvalidParam, fetch.ParamLimit, maxLimit)
	}
	if err := q.Validate(); err != nil {
		return core.Query{}, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}
	return q, nil
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}
	return n, nil
}

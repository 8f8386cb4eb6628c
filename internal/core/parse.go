package core

import (
	"errors"
	"strings"
	"time"
)

// DisplayDateLayout is how transaction dates appear in the payload.
const DisplayDateLayout = "02/01/2006"

var dateLayouts = []string{DisplayDateLayout, "2006-01-02", "2/1/2006", "02/01/06"}

var ErrInvalidDate = errors.New("invalid date")

// ParseDate reads a spreadsheet date cell. Both the Brazilian day-first form
// and ISO dates are accepted.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Outcome Kind = "outcome"

	StatusSucceeded = "Succeeded"
	StatusPending   = "Pending"
)

type (
	// Kind tells whether a transaction adds to income or outcome.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one spreadsheet row as seen by the aggregation side.
	Transaction struct {
		Date     Date
		Name     string
		Category string
		Amount   Money
		Kind     Kind
		Status   string
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidStatus = errors.New("invalid status")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseKind accepts the spreadsheet spellings of income and outcome.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita", "entrada":
		return Income, nil
	case "outcome", "despesa", "saida", "saída":
		return Outcome, nil
	}
	return "", ErrInvalidKind
}

// NormalizeStatus maps an arbitrary status cell to Succeeded or Pending.
// Blank cells count as Succeeded.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "succeeded", "pago", "ok":
		return StatusSucceeded
	}
	return StatusPending
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Kind != Income && t.Kind != Outcome {
		return ErrInvalidKind
	}
	if t.Status != StatusSucceeded && t.Status != StatusPending {
		return ErrInvalidStatus
	}
	return nil
}

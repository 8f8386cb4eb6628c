package sheets

import (
	"errors"
	"fmt"
	"strings"

	"painel/internal/core"
)

// Column order of a transactions tab, and of the CSV seed.
const (
	ColDate = iota
	ColName
	ColCategory
	ColAmount
	ColType
	ColStatus

	NumColumns
)

// Header is the first row written to new transaction tabs.
var Header = []string{"Date", "Name", "Category", "Amount", "Type", "Status"}

var ErrShortRow = errors.New("row has too few columns")

// ParseRow converts spreadsheet cells into a transaction. Status may be
// missing; every other column is required.
func ParseRow(cols []string) (core.Transaction, error) {
	if len(cols) < ColStatus {
		return core.Transaction{}, ErrShortRow
	}
	date, err := core.ParseDate(cols[ColDate])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", cols[ColDate], err)
	}
	cents, err := parseAmount(cols[ColAmount])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", cols[ColAmount], err)
	}
	kind, err := core.ParseKind(cols[ColType])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("type %q: %w", cols[ColType], err)
	}
	status := ""
	if len(cols) > ColStatus {
		status = cols[ColStatus]
	}
	t := core.Transaction{
		Date:     date,
		Name:     strings.TrimSpace(cols[ColName]),
		Category: strings.TrimSpace(cols[ColCategory]),
		Amount:   core.Money{Cents: cents},
		Kind:     kind,
		Status:   core.NormalizeStatus(status),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// FormatRow is the inverse of ParseRow.
func FormatRow(t core.Transaction) []string {
	kind := "Despesa"
	if t.Kind == core.Income {
		kind = "Receita"
	}
	return []string{
		t.Date.Format(core.DisplayDateLayout),
		t.Name,
		t.Category,
		t.Amount.Decimal().StringFixed(2),
		kind,
		t.Status,
	}
}

// IsHeader reports whether cols looks like the header row.
func IsHeader(cols []string) bool {
	return len(cols) > 0 && strings.EqualFold(strings.TrimSpace(cols[ColDate]), Header[ColDate])
}

// parseAmount accepts "1234.56", "1.234,56", "1.234" and "R$ 1.234,56".
// Signs are dropped; the Type column decides the direction.
func parseAmount(s string) (int64, error) {
	s = strings.TrimLeft(strings.TrimSpace(s), "+-")
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.TrimLeft(s, "+-")
	if strings.Contains(s, ",") || thousandsGrouped(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	return core.ParseDecimalToCents(s)
}

// thousandsGrouped reports whether every dot in s is followed by exactly
// three digits, as in "1.234" or "1.234.567" from a "#,##0" cell.
func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 || groups[0] == "" {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || strings.Trim(g, "0123456789") != "" {
			return false
		}
	}
	return true
}

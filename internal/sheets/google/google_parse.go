package google

import (
	"fmt"
	"strings"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

type skippedRow struct {
	row int
	err error
}

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into transactions dated in year. Row numbers in skipped are 1-based like
// the spreadsheet's.
func parseTransactions(values [][]any, year int) ([]core.Transaction, []skippedRow) {
	var (
		out     []core.Transaction
		skipped []skippedRow
	)
	for i, raw := range values {
		cols := toStrings(raw)
		if i == 0 && ports.IsHeader(cols) {
			continue
		}
		if blank(cols) {
			continue
		}
		t, err := ports.ParseRow(cols)
		if err != nil {
			skipped = append(skipped, skippedRow{row: i + 1, err: err})
			continue
		}
		if t.Date.Year() != year {
			skipped = append(skipped, skippedRow{row: i + 1, err: fmt.Errorf("dated %d, tab is %d", t.Date.Year(), year)})
			continue
		}
		out = append(out, t)
	}
	return out, skipped
}

func blank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

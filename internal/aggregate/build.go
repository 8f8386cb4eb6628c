// Package aggregate produces dashboard payloads from raw transactions.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// UncategorizedLabel names the pie slice for outcomes without a category.
const UncategorizedLabel = "Sem categoria"

// Build aggregates txs into the payload for q. The series always covers the
// twelve months of q.Year; KPIs, pie and tx cover the selected period.
func Build(txs []core.Transaction, q core.Query) core.Dashboard {
	var (
		income, outcome [12]int64
		kpiIn, kpiOut   int64
		byCategory      = map[string]int64{}
		period          []core.Transaction
	)

	for _, t := range txs {
		if t.Date.Year() != q.Year {
			continue
		}
		m := t.Date.Month() - 1
		if t.Kind == core.Income {
			income[m] += t.Amount.Cents
		} else {
			outcome[m] += t.Amount.Cents
		}

		if !q.Contains(t.Date) {
			continue
		}
		period = append(period, t)
		if t.Kind == core.Income {
			kpiIn += t.Amount.Cents
			continue
		}
		kpiOut += t.Amount.Cents
		cat := strings.TrimSpace(t.Category)
		if cat == "" {
			cat = UncategorizedLabel
		}
		byCategory[cat] += t.Amount.Cents
	}

	return core.Dashboard{
		KPIs: core.KPIs{
			core.KPIIncome:  core.FormatCents(kpiIn),
			core.KPIOutcome: core.FormatCents(kpiOut),
		},
		Series: series(income, outcome),
		Pie:    pie(byCategory),
		Tx:     rows(period, q.Limit),
	}
}

func series(income, outcome [12]int64) core.Series {
	s := core.Series{
		Months:  append([]string(nil), core.MonthNames[:]...),
		Income:  make([]decimal.Decimal, 12),
		Outcome: make([]decimal.Decimal, 12),
	}
	for i := range 12 {
		s.Income[i] = core.Money{Cents: income[i]}.Decimal()
		s.Outcome[i] = core.Money{Cents: outcome[i]}.Decimal()
	}
	return s
}

// pie orders categories by amount, largest first, then by name.
func pie(byCategory map[string]int64) core.Pie {
	labels := make([]string, 0, len(byCategory))
	for k := range byCategory {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := byCategory[labels[i]], byCategory[labels[j]]
		if a != b {
			return a > b
		}
		return labels[i] < labels[j]
	})

	p := core.Pie{Labels: labels, Values: make([]decimal.Decimal, len(labels)), Total: decimal.Zero}
	var total int64
	for i, l := range labels {
		p.Values[i] = core.Money{Cents: byCategory[l]}.Decimal()
		total += byCategory[l]
	}
	p.Total = core.Money{Cents: total}.Decimal()
	return p
}

// rows lists the newest transactions first, at most limit of them.
func rows(period []core.Transaction, limit int) []core.TxRow {
	sort.SliceStable(period, func(i, j int) bool {
		return period[i].Date.After(period[j].Date.Time)
	})
	if limit > 0 && len(period) > limit {
		period = period[:limit]
	}
	out := make([]core.TxRow, 0, len(period))
	for _, t := range period {
		out = append(out, core.TxRow{
			Name:      t.Name,
			Category:  t.Category,
			Date:      t.Date.Format(core.DisplayDateLayout),
			AmountFmt: core.FormatCents(t.Amount.Cents),
			Status:    t.Status,
		})
	}
	return out
}

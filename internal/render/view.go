// Package render turns a dashboard payload into a view model and writes it
// out as HTML or as a terminal report.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

const allMonthsLabel = "Todos"

type (
	// View is everything a renderer needs for one dashboard.
	View struct {
		KPIs    KPIs
		Bars    []BarGroup
		Donut   Donut
		Tx      []TxRow
		Filters Filters
		// Error is shown in place of the data when the fetch failed.
		Error string
	}

	KPIs struct {
		Income  string
		Outcome string
	}

	// BarGroup is one month of the income/outcome chart. Heights are whole
	// percentages of the tallest bar in the chart.
	BarGroup struct {
		Label         string
		IncomeHeight  int
		OutcomeHeight int
		IncomeTitle   string
		OutcomeTitle  string
	}

	Donut struct {
		// Background is a CSS background value: a conic-gradient, or the
		// empty colour.
		Background string
		Slices     []Slice
	}

	Slice struct {
		Label string
		Value string
		Color string
		From  float64
		To    float64
	}

	TxRow struct {
		Name        string
		Initials    string
		AvatarColor string
		Date        string
		Amount      string
		Status      string
		Succeeded   bool
	}

	Filters struct {
		Years  []Option
		Months []Option
	}

	Option struct {
		Value    int
		Label    string
		Selected bool
	}
)

// Build derives the view for d. sel is the period being shown; now anchors
// the year list.
func Build(d core.Dashboard, sel core.Query, now time.Time) View {
	return View{
		KPIs:    KPIs{Income: d.KPIs.Income(), Outcome: d.KPIs.Outcome()},
		Bars:    Bars(d.Series),
		Donut:   BuildDonut(d.Pie),
		Tx:      Rows(d.Tx),
		Filters: BuildFilters(now, sel.Year, sel.Month),
	}
}

// ErrorView is the view shown when no payload is available.
func ErrorView(err error, sel core.Query, now time.Time) View {
	return View{
		Donut:   Donut{Background: EmptyDonutColor},
		Filters: BuildFilters(now, sel.Year, sel.Month),
		Error:   err.Error(),
	}
}

// Bars lays out one group per month label of s.
func Bars(s core.Series) []BarGroup {
	maxV := decimal.NewFromInt(1)
	for _, v := range s.Income {
		maxV = decimal.Max(maxV, v)
	}
	for _, v := range s.Outcome {
		maxV = decimal.Max(maxV, v)
	}

	groups := make([]BarGroup, 0, len(s.Months))
	for i, m := range s.Months {
		name := m
		if i < len(core.MonthNames) {
			name = core.MonthNames[i]
		}
		inc, out := at(s.Income, i), at(s.Outcome, i)
		groups = append(groups, BarGroup{
			Label:         name,
			IncomeHeight:  percent(inc, maxV),
			OutcomeHeight: percent(out, maxV),
			IncomeTitle:   fmt.Sprintf("Receitas %s: %s", name, core.FormatBRL(inc)),
			OutcomeTitle:  fmt.Sprintf("Despesas %s: %s", name, core.FormatBRL(out)),
		})
	}
	return groups
}

func at(vs []decimal.Decimal, i int) decimal.Decimal {
	if i < len(vs) {
		return vs[i]
	}
	return decimal.Zero
}

func percent(v, maxV decimal.Decimal) int {
	return int(v.Div(maxV).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// BuildDonut computes cumulative slices of p in degrees.
func BuildDonut(p core.Pie) Donut {
	if len(p.Labels) == 0 || !p.Total.IsPositive() {
		return Donut{Background: EmptyDonutColor}
	}

	var (
		acc    decimal.Decimal
		slices []Slice
		stops  []string
		deg    = decimal.NewFromInt(360)
	)
	for i, v := range p.Values {
		from := acc.Div(p.Total).Mul(deg)
		acc = acc.Add(v)
		to := acc.Div(p.Total).Mul(deg)

		label := ""
		if i < len(p.Labels) {
			label = p.Labels[i]
		}
		color := DonutColor(i)
		f, _ := from.Round(2).Float64()
		t, _ := to.Round(2).Float64()
		slices = append(slices, Slice{Label: label, Value: core.FormatBRL(v), Color: color, From: f, To: t})
		stops = append(stops, fmt.Sprintf("%s %sdeg %sdeg", color, from.StringFixed(2), to.StringFixed(2)))
	}
	return Donut{
		Background: "conic-gradient(" + strings.Join(stops, ", ") + ")",
		Slices:     slices,
	}
}

// Rows prepares transaction rows for display.
func Rows(tx []core.TxRow) []TxRow {
	rows := make([]TxRow, 0, len(tx))
	for _, r := range tx {
		key := r.Category
		if key == "" {
			key = r.Name
		}
		ok := r.Status == core.StatusSucceeded
		status := core.StatusPending
		if ok {
			status = core.StatusSucceeded
		}
		rows = append(rows, TxRow{
			Name:        r.Name,
			Initials:    Initials(r.Name),
			AvatarColor: PickColor(key),
			Date:        r.Date,
			Amount:      r.AmountFmt,
			Status:      status,
			Succeeded:   ok,
		})
	}
	return rows
}

// BuildFilters lists the selectable years around now and the months with
// "Todos" first. A zero year selects the current one.
func BuildFilters(now time.Time, year, month int) Filters {
	if year == 0 {
		year = now.Year()
	}
	var f Filters
	for y := now.Year() - 1; y <= now.Year()+1; y++ {
		f.Years = append(f.Years, Option{Value: y, Label: fmt.Sprint(y), Selected: y == year})
	}
	f.Months = append(f.Months, Option{Value: 0, Label: allMonthsLabel, Selected: month == 0})
	for i, name := range core.MonthNames {
		f.Months = append(f.Months, Option{Value: i + 1, Label: name, Selected: month == i+1})
	}
	return f
}

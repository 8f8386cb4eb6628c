package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	outcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#e5e7eb")).
			Padding(0, 1)
)

// Terminal renders a plain-text report for the show command.
type Terminal struct{}

func (Terminal) Render(w io.Writer, v View) error {
	if v.Error != "" {
		_, err := fmt.Fprintln(w, errorStyle.Render("Erro: "+v.Error))
		return err
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		renderKPIs(v.KPIs),
		panelStyle.Render(renderBars(v.Bars)),
		panelStyle.Render(renderDonut(v.Donut)),
		panelStyle.Render(renderTx(v.Tx)),
	)
	_, err := fmt.Fprintln(w, out)
	return err
}

func renderKPIs(k KPIs) string {
	income := panelStyle.Render(labelStyle.Render("Receitas") + "\n" + incomeStyle.Render(k.Income))
	outcome := panelStyle.Render(labelStyle.Render("Despesas") + "\n" + outcomeStyle.Render(k.Outcome))
	return lipgloss.JoinHorizontal(lipgloss.Top, income, outcome)
}

func renderBars(groups []BarGroup) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Receitas x Despesas"))
	for _, g := range groups {
		fmt.Fprintf(&b, "\n%-3s %s\n    %s",
			g.Label,
			incomeStyle.Render(bar(g.IncomeHeight)),
			outcomeStyle.Render(bar(g.OutcomeHeight)))
	}
	return b.String()
}

func bar(pct int) string {
	n := pct * barWidth / 100
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n) + strings.Repeat("·", barWidth-min(n, barWidth))
}

func renderDonut(d Donut) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Despesas por categoria"))
	if len(d.Slices) == 0 {
		b.WriteString("\n" + labelStyle.Render("Sem dados"))
		return b.String()
	}
	for _, s := range d.Slices {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render("●")
		fmt.Fprintf(&b, "\n%s %-20s %s", dot, s.Label, s.Value)
	}
	return b.String()
}

func renderTx(rows []TxRow) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Transações"))
	if len(rows) == 0 {
		b.WriteString("\n" + labelStyle.Render("Nenhuma transação"))
		return b.String()
	}
	for _, r := range rows {
		avatar := lipgloss.NewStyle().
			Background(lipgloss.Color(r.AvatarColor)).
			Foreground(lipgloss.Color("#ffffff")).
			Render(fmt.Sprintf("%-2s", r.Initials))
		status := outcomeStyle
		if r.Succeeded {
			status = incomeStyle
		}
		fmt.Fprintf(&b, "\n%s %-24s %-10s %14s %s",
			avatar, r.Name, r.Date, r.Amount, status.Render(r.Status))
	}
	return b.String()
}

package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

func sampleView() View {
	d := core.Dashboard{
		KPIs:   core.KPIs{core.KPIIncome: "R$ 5.000,00", core.KPIOutcome: "R$ 1.250,00"},
		Series: core.Series{Months: []string{"Jan", "Fev"}, Income: decs(5000, 0), Outcome: decs(1000, 250)},
		Pie:    core.Pie{Labels: []string{"Casa", "Lazer"}, Values: decs(1000, 250), Total: decimal.NewFromInt(1250)},
		Tx: []core.TxRow{
			{Name: "Aluguel <apto>", Category: "Casa", Date: "01/02/2024", AmountFmt: "R$ 1.000,00", Status: "Succeeded"},
		},
	}
	return Build(d, core.Query{Year: 2024, Month: 2}, time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC))
}

func TestHTMLRender(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.Render(&buf, sampleView()))
	out := buf.String()

	assert.Contains(t, out, `<strong id="kpi-income">R$ 5.000,00</strong>`)
	assert.Contains(t, out, "conic-gradient(#6366f1 0.00deg 288.00deg, #22c55e 288.00deg 360.00deg)")
	assert.Contains(t, out, `style="height: 100%"`)
	assert.Contains(t, out, "Aluguel &lt;apto&gt;")
	assert.Contains(t, out, `class="status-badge status-succeeded"`)
	assert.Contains(t, out, `<option value="2" selected>Fev</option>`)
	assert.NotContains(t, out, "ZgotmplZ")
	assert.NotContains(t, out, "banner--error")
}

func TestHTMLRenderError(t *testing.T) {
	h, err := NewHTML()
	require.NoError(t, err)

	var buf bytes.Buffer
	v := ErrorView(errors.New("fallback transport failed"), core.Query{Year: 2024}, time.Now())
	require.NoError(t, h.Render(&buf, v))

	assert.Contains(t, buf.String(), "banner--error")
	assert.Contains(t, buf.String(), "fallback transport failed")
	assert.Contains(t, buf.String(), "Nenhuma transação no período")
}

func TestTerminalRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal{}.Render(&buf, sampleView()))
	out := buf.String()

	for _, want := range []string{"R$ 5.000,00", "Casa", "Lazer", "Aluguel <apto>", "Succeeded", "Fev"} {
		assert.Contains(t, out, want)
	}
}

func TestTerminalRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal{}.Render(&buf, Build(core.Dashboard{}, core.Query{}, time.Now())))
	assert.Contains(t, buf.String(), "Sem dados")
	assert.Contains(t, buf.String(), "Nenhuma transação")

	buf.Reset()
	require.NoError(t, Terminal{}.Render(&buf, View{Error: "boom"}))
	assert.True(t, strings.Contains(buf.String(), "boom"))
}

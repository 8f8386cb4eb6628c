package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// Payload numbers travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// KPI keys filled by the aggregation endpoint.
const (
	KPIIncome  = "incomeFmt"
	KPIOutcome = "outcomeFmt"
)

type (
	// Dashboard is the payload served by the aggregation endpoint. The
	// fetcher passes it through without checking its shape: Raw keeps the
	// bytes as received and the typed fields are a best-effort view of them.
	Dashboard struct {
		KPIs   KPIs    `json:"kpis"`
		Series Series  `json:"series"`
		Pie    Pie     `json:"pie"`
		Tx     []TxRow `json:"tx"`

		Raw json.RawMessage `json:"-"`
	}

	// KPIs holds pre-formatted summary strings keyed by name.
	KPIs map[string]string

	// Series is index-aligned across Months, Income and Outcome.
	Series struct {
		Months  []string          `json:"months"`
		Income  []decimal.Decimal `json:"income"`
		Outcome []decimal.Decimal `json:"outcome"`
	}

	Pie struct {
		Labels []string          `json:"labels"`
		Values []decimal.Decimal `json:"values"`
		Total  decimal.Decimal   `json:"total"`
	}

	TxRow struct {
		Name      string `json:"name"`
		Category  string `json:"category,omitempty"`
		Date      string `json:"date"`
		AmountFmt string `json:"amountFmt"`
		Status    string `json:"status"`
	}
)

func (k KPIs) Income() string  { return k[KPIIncome] }
func (k KPIs) Outcome() string { return k[KPIOutcome] }

type dashboardFields Dashboard

// MarshalJSON returns Raw when the dashboard was decoded from a payload, so
// re-encoding never drops or reshapes what the endpoint sent.
func (d Dashboard) MarshalJSON() ([]byte, error) {
	if len(d.Raw) > 0 {
		return d.Raw, nil
	}
	return json.Marshal(dashboardFields(d))
}

// UnmarshalJSON keeps data in Raw and fills the typed view section by
// section. A section that does not fit its type is left empty; only
// invalid JSON is an error, and the decoder reports that before calling in.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	*d = Dashboard{Raw: append(json.RawMessage(nil), data...)}

	var top struct {
		KPIs   json.RawMessage `json:"kpis"`
		Series json.RawMessage `json:"series"`
		Pie    json.RawMessage `json:"pie"`
		Tx     json.RawMessage `json:"tx"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil
	}

	d.KPIs = decodeKPIs(top.KPIs)
	decodeSection(top.Series, &d.Series)
	decodeSection(top.Pie, &d.Pie)

	var rows []json.RawMessage
	decodeSection(top.Tx, &rows)
	for _, raw := range rows {
		var row TxRow
		if decodeSection(raw, &row) {
			d.Tx = append(d.Tx, row)
		}
	}
	return nil
}

func decodeSection(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// decodeKPIs keeps string values as they are and any other value as its
// JSON text, e.g. a numeric count becomes "3".
func decodeKPIs(raw json.RawMessage) KPIs {
	var fields map[string]json.RawMessage
	if !decodeSection(raw, &fields) || fields == nil {
		return nil
	}
	kpis := make(KPIs, len(fields))
	for name, v := range fields {
		var s string
		if json.Unmarshal(v, &s) == nil {
			kpis[name] = s
			continue
		}
		kpis[name] = string(v)
	}
	return kpis
}

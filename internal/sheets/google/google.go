package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"painel/internal/core"
	applog "painel/internal/log"
	ports "painel/internal/sheets"
)

// Client reads and writes the yearly transaction tabs of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base tab name without year, e.g. "Transacoes"; the year is prefixed.
	sheetBase string
	logger    *applog.Logger
}

var _ ports.TransactionStore = (*Client)(nil)

// Options configure New. Credentials come from CredentialsJSON, or from
// CredentialsFile when the JSON is empty. ClientOptions are appended last
// and win over the defaults.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Logger          *applog.Logger
	ClientOptions   []goption.ClientOption
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, o Options) (*Client, error) {
	if strings.TrimSpace(o.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(o.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	logger := o.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	var opts []goption.ClientOption
	if len(o.ClientOptions) == 0 {
		creds, err := readCredentials(o)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	opts = append(opts, o.ClientOptions...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", o.SpreadsheetID, "sheet", o.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: o.SpreadsheetID,
		sheetBase:     strings.TrimSpace(o.SheetName),
		logger:        logger,
	}, nil
}

func readCredentials(o Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(o.CredentialsJSON) != "":
		return []byte(o.CredentialsJSON), nil
	case strings.TrimSpace(o.CredentialsFile) != "":
		b, err := os.ReadFile(o.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// ListTransactions reads every row of the year's tab. Rows that do not
// parse are skipped and logged.
func (c *Client) ListTransactions(ctx context.Context, year int) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:F", yearPrefixedName(c.sheetBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	txs, skipped := parseTransactions(resp.Values, year)
	for _, s := range skipped {
		c.logger.WarnContext(ctx, "Skipping transaction row", "range", rng, "row", s.row, applog.FieldError, s.err)
	}
	return txs, nil
}

// AppendTransaction appends t as a new row of the tab for its year.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	rng := fmt.Sprintf("%s!A:F", yearPrefixedName(c.sheetBase, t.Date.Year()))

	row := ports.FormatRow(t)
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &gsheet.ValueRange{Values: [][]any{values}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// Ping checks the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	return nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"painel/internal/core"
	applog "painel/internal/log"
	ports "painel/internal/sheets"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var _ ports.TransactionStore = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AppendTransaction implements sheets.TransactionAppender.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	ref, _, err := r.InsertTransaction(ctx, t, "")
	return ref, err
}

// InsertTransaction stores t. A non-empty messageID makes the insert
// idempotent: a second insert with the same id is skipped and reports
// inserted == false.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction, messageID string) (ref string, inserted bool, err error) {
	if err := t.Validate(); err != nil {
		return "", false, fmt.Errorf("validation failed: %w", err)
	}

	var msgID sql.NullString
	if messageID != "" {
		msgID = sql.NullString{String: messageID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (date, name, category, amount_cents, kind, status, message_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id) DO NOTHING`,
		t.Date.Format(dateLayout), t.Name, t.Category, t.Amount.Cents, string(t.Kind), t.Status, msgID)
	if err != nil {
		return "", false, fmt.Errorf("insert transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		r.logger.InfoContext(ctx, "Duplicate transaction message skipped", "message_id", messageID)
		return "", false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", false, fmt.Errorf("last insert id: %w", err)
	}
	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"name", t.Name,
		"amount_cents", t.Amount.Cents,
		"kind", t.Kind,
		"date", t.Date.Format(dateLayout))
	return strconv.FormatInt(id, 10), true, nil
}

// ListTransactions implements sheets.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, year int) ([]core.Transaction, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, name, category, amount_cents, kind, status
		FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date, id`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			date, kind string
		)
		if err := rows.Scan(&date, &t.Name, &t.Category, &t.Amount.Cents, &kind, &t.Status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		t.Date = core.Date{Time: d}
		t.Kind = core.Kind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

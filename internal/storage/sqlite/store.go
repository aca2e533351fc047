// Package sqlite persists colony turn reports in a local SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/colony/internal/game/ledger"
)

// ErrReportNotFound is returned when a turn has no stored report.
var ErrReportNotFound = errors.New("turn report not found")

const schema = `
	CREATE TABLE IF NOT EXISTS turn_reports (
		turn       INTEGER PRIMARY KEY,
		opening    INTEGER NOT NULL,
		closing    INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS turn_report_entries (
		turn     INTEGER NOT NULL REFERENCES turn_reports (turn) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		category TEXT    NOT NULL,
		label    TEXT    NOT NULL,
		amount   INTEGER NOT NULL,
		PRIMARY KEY (turn, position)
	);
`

// Store is a ledger.ReportStore backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates or opens the database at path and applies the schema. The
// special path ":memory:" opens a private in-memory database.
//
// Precondition: path must be non-empty; logger must be non-nil.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		clean := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating directory for %s: %w", clean, err)
		}
		dsn = "file:" + clean + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: connecting to database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: applying schema: %w", err)
	}
	logger.Debug("turn report store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores report, replacing any earlier report for the same turn.
func (s *Store) Save(ctx context.Context, report ledger.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turn_reports (turn, opening, closing) VALUES (?, ?, ?)
		 ON CONFLICT (turn) DO UPDATE
		 SET opening = excluded.opening, closing = excluded.closing, created_at = CURRENT_TIMESTAMP`,
		report.Turn, report.Opening, report.Closing,
	); err != nil {
		return fmt.Errorf("sqlite: saving turn %d report: %w", report.Turn, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turn_report_entries WHERE turn = ?`, report.Turn); err != nil {
		return fmt.Errorf("sqlite: clearing turn %d entries: %w", report.Turn, err)
	}
	for i, e := range report.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turn_report_entries (turn, position, category, label, amount) VALUES (?, ?, ?, ?, ?)`,
			report.Turn, i, string(e.Category), e.Label, e.Amount,
		); err != nil {
			return fmt.Errorf("sqlite: saving turn %d entry %d: %w", report.Turn, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing turn %d report: %w", report.Turn, err)
	}
	s.logger.Debug("turn report saved", zap.Int("turn", report.Turn), zap.Int("entries", len(report.Entries)))
	return nil
}

// Get returns the report for turn, or ErrReportNotFound.
func (s *Store) Get(ctx context.Context, turn int) (ledger.Report, error) {
	report := ledger.Report{Turn: turn}
	err := s.db.QueryRowContext(ctx,
		`SELECT opening, closing FROM turn_reports WHERE turn = ?`, turn,
	).Scan(&report.Opening, &report.Closing)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Report{}, ErrReportNotFound
	}
	if err != nil {
		return ledger.Report{}, fmt.Errorf("sqlite: querying turn %d report: %w", turn, err)
	}
	if report.Entries, err = s.entries(ctx, turn); err != nil {
		return ledger.Report{}, err
	}
	return report, nil
}

// List returns up to limit reports, most recent turn first. A limit <= 0
// returns every report.
func (s *Store) List(ctx context.Context, limit int) ([]ledger.Report, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn, opening, closing FROM turn_reports ORDER BY turn DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reports: %w", err)
	}
	var reports []ledger.Report
	for rows.Next() {
		var r ledger.Report
		if err := rows.Scan(&r.Turn, &r.Opening, &r.Closing); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scanning report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("sqlite: closing report rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reports: %w", err)
	}
	for i := range reports {
		if reports[i].Entries, err = s.entries(ctx, reports[i].Turn); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func (s *Store) entries(ctx context.Context, turn int) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, label, amount FROM turn_report_entries WHERE turn = ? ORDER BY position`, turn,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying turn %d entries: %w", turn, err)
	}
	defer rows.Close()
	var entries []ledger.Entry
	for rows.Next() {
		var (
			e        ledger.Entry
			category string
		)
		if err := rows.Scan(&category, &e.Label, &e.Amount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning turn %d entry: %w", turn, err)
		}
		e.Category = ledger.Category(category)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

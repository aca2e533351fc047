package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/colony/internal/game/ledger"
)

// ErrReportNotFound is returned when a turn has no stored report.
var ErrReportNotFound = errors.New("turn report not found")

// ReportRepository persists closed turn reports. It implements
// ledger.ReportStore.
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool; logger must be non-nil.
func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

// Save stores r, replacing any earlier report for the same turn.
//
// Postcondition: The report and all of its entries are stored atomically.
func (r *ReportRepository) Save(ctx context.Context, report ledger.Report) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO turn_reports (turn, opening, closing)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (turn) DO UPDATE
			 SET opening = EXCLUDED.opening, closing = EXCLUDED.closing, created_at = NOW()`,
			report.Turn, report.Opening, report.Closing,
		); err != nil {
			return fmt.Errorf("upserting report: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM turn_report_entries WHERE turn = $1`, report.Turn); err != nil {
			return fmt.Errorf("clearing entries: %w", err)
		}
		batch := &pgx.Batch{}
		for i, e := range report.Entries {
			batch.Queue(
				`INSERT INTO turn_report_entries (turn, position, category, label, amount)
				 VALUES ($1, $2, $3, $4, $5)`,
				report.Turn, i, string(e.Category), e.Label, e.Amount,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving turn %d report: %w", report.Turn, err)
	}
	r.logger.Debug("turn report saved", zap.Int("turn", report.Turn), zap.Int("entries", len(report.Entries)))
	return nil
}

// Get returns the report for turn.
//
// Postcondition: Returns the report or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, turn int) (ledger.Report, error) {
	report := ledger.Report{Turn: turn}
	err := r.db.QueryRow(ctx,
		`SELECT opening, closing FROM turn_reports WHERE turn = $1`,
		turn,
	).Scan(&report.Opening, &report.Closing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Report{}, ErrReportNotFound
		}
		return ledger.Report{}, fmt.Errorf("querying turn %d report: %w", turn, err)
	}
	entries, err := r.entries(ctx, turn)
	if err != nil {
		return ledger.Report{}, err
	}
	report.Entries = entries
	return report, nil
}

// List returns up to limit reports, most recent turn first. A limit <= 0
// returns every report.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]ledger.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT turn, opening, closing FROM turn_reports
		 ORDER BY turn DESC
		 LIMIT NULLIF($1::int, 0)`,
		max(limit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	reports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.Report, error) {
		var rep ledger.Report
		err := row.Scan(&rep.Turn, &rep.Opening, &rep.Closing)
		return rep, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning reports: %w", err)
	}
	for i := range reports {
		entries, err := r.entries(ctx, reports[i].Turn)
		if err != nil {
			return nil, err
		}
		reports[i].Entries = entries
	}
	return reports, nil
}

func (r *ReportRepository) entries(ctx context.Context, turn int) ([]ledger.Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, label, amount FROM turn_report_entries
		 WHERE turn = $1 ORDER BY position`,
		turn,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turn %d entries: %w", turn, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.Entry, error) {
		var (
			e        ledger.Entry
			category string
		)
		err := row.Scan(&category, &e.Label, &e.Amount)
		e.Category = ledger.Category(category)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning turn %d entries: %w", turn, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries, nil
}

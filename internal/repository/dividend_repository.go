package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// DividendRepository provides data access methods for the pending_dividend table.
type DividendRepository struct {
	db *sql.DB
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// InsertPendingDividend queues a dividend credit.
func (r *DividendRepository) InsertPendingDividend(ctx context.Context, d model.PendingDividend) error {
	query := `
		INSERT INTO pending_dividend (id, asset_id, cash_amount, credited_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.AssetID, d.CashAmount, FormatTime(d.CreditedAt)); err != nil {
		return fmt.Errorf("failed to insert pending dividend: %w", err)
	}
	return nil
}

// RequeuePendingDividend stores d ahead of every queued dividend, so it is the
// first one LoadPendingDividends returns.
func (r *DividendRepository) RequeuePendingDividend(ctx context.Context, d model.PendingDividend) error {
	query := `
		INSERT INTO pending_dividend (seq, id, asset_id, cash_amount, credited_at)
		VALUES ((SELECT COALESCE(MIN(seq), 1) - 1 FROM pending_dividend), ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.AssetID, d.CashAmount, FormatTime(d.CreditedAt)); err != nil {
		return fmt.Errorf("failed to requeue pending dividend: %w", err)
	}
	return nil
}

// DeletePendingDividend removes a consumed dividend. Deleting an unknown ID is not an error.
func (r *DividendRepository) DeletePendingDividend(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_dividend WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete pending dividend: %w", err)
	}
	return nil
}

// LoadPendingDividends returns the queued dividends in arrival order.
func (r *DividendRepository) LoadPendingDividends(ctx context.Context) ([]model.PendingDividend, error) {
	query := `
		SELECT id, asset_id, cash_amount, credited_at
		FROM pending_dividend
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending_dividend table: %w", err)
	}
	defer rows.Close()

	pending := []model.PendingDividend{}
	for rows.Next() {
		var d model.PendingDividend
		var creditedAtStr string

		if err := rows.Scan(&d.ID, &d.AssetID, &d.CashAmount, &creditedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan pending_dividend results: %w", err)
		}
		d.CreditedAt, err = ParseTime(creditedAtStr)
		if err != nil {
			return nil, err
		}
		pending = append(pending, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending_dividend table: %w", err)
	}
	return pending, nil
}

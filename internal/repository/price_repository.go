package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// PriceRepository provides data access methods for the price_history table.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertPrices stores closing prices for one asset in a single transaction.
// An existing observation at the same timestamp is overwritten.
func (r *PriceRepository) UpsertPrices(ctx context.Context, assetID string, points []model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (asset_id, timestamp, close)
		VALUES (?, ?, ?)
		ON CONFLICT(asset_id, timestamp) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare price insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, assetID, FormatTime(p.Timestamp), p.Close); err != nil {
			return fmt.Errorf("failed to insert price for %s: %w", assetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}
	return nil
}

// LoadPriceHistory returns every stored series keyed by asset ID, each
// ordered by ascending timestamp.
func (r *PriceRepository) LoadPriceHistory(ctx context.Context) (map[string][]model.PricePoint, error) {
	query := `
		SELECT asset_id, timestamp, close
		FROM price_history
		ORDER BY asset_id ASC, timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_history table: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]model.PricePoint)
	for rows.Next() {
		var assetID, timestampStr string
		var p model.PricePoint

		if err := rows.Scan(&assetID, &timestampStr, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price_history results: %w", err)
		}
		p.Timestamp, err = ParseTime(timestampStr)
		if err != nil {
			return nil, err
		}
		history[assetID] = append(history[assetID], p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_history table: %w", err)
	}
	return history, nil
}

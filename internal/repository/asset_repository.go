package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// AssetRepository provides data access methods for the asset table.
// Assets hold the master data and cached reference price of every symbol the
// portfolio has ever traded.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// UpsertAsset inserts the asset or replaces its name, sector, type and
// reference price when it already exists.
func (r *AssetRepository) UpsertAsset(ctx context.Context, asset model.Asset) error {
	query := `
		INSERT INTO asset (id, name, sector, asset_type, reference_price, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			asset_type = excluded.asset_type,
			reference_price = excluded.reference_price,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.Name,
		asset.Sector,
		asset.Type,
		asset.ReferencePrice,
		FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert asset %s: %w", asset.ID, err)
	}
	return nil
}

// GetAsset retrieves a single asset by its ID.
// Returns apperrors.ErrAssetNotFound if no asset with the given ID exists.
func (r *AssetRepository) GetAsset(ctx context.Context, id string) (model.Asset, error) {
	query := `
		SELECT id, name, sector, asset_type, reference_price
		FROM asset
		WHERE id = ?
	`

	var a model.Asset
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Sector, &a.Type, &a.ReferencePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to query asset table: %w", err)
	}
	return a, nil
}

// ListAssets returns every stored asset ordered by ID.
func (r *AssetRepository) ListAssets(ctx context.Context) ([]model.Asset, error) {
	query := `
		SELECT id, name, sector, asset_type, reference_price
		FROM asset
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Sector, &a.Type, &a.ReferencePrice); err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}
		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}
	return assets, nil
}

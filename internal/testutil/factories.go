package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/repository"
)

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Simple creation with defaults
//	asset := testutil.NewAsset().Build(t, db)
//
//	// Customized asset
//	asset := testutil.NewAsset().
//	    WithID("AAPL").
//	    WithSector("Technology").
//	    WithReferencePrice(150).
//	    Build(t, db)
type AssetBuilder struct {
	ID             string
	Name           string
	Sector         string
	Type           string
	ReferencePrice float64
}

// NewAsset creates an AssetBuilder with sensible defaults.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		ID:             MakeSymbol("TST"),
		Name:           MakeSymbolName("Test Asset"),
		Sector:         "Technology",
		Type:           model.AssetTypeStock,
		ReferencePrice: 100,
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id string) *AssetBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AssetBuilder) WithName(name string) *AssetBuilder {
	b.Name = name
	return b
}

// WithSector sets a custom sector.
func (b *AssetBuilder) WithSector(sector string) *AssetBuilder {
	b.Sector = sector
	return b
}

// WithType sets a custom asset type.
func (b *AssetBuilder) WithType(assetType string) *AssetBuilder {
	b.Type = assetType
	return b
}

// WithReferencePrice sets a custom cached reference price.
func (b *AssetBuilder) WithReferencePrice(price float64) *AssetBuilder {
	b.ReferencePrice = price
	return b
}

// Model returns the asset without storing it.
func (b *AssetBuilder) Model() model.Asset {
	return model.Asset{
		ID:             b.ID,
		Name:           b.Name,
		Sector:         b.Sector,
		Type:           b.Type,
		ReferencePrice: b.ReferencePrice,
	}
}

// Build creates the asset in the database and returns it.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	query := `
		INSERT INTO asset (id, name, sector, asset_type, reference_price)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Sector, b.Type, b.ReferencePrice)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return b.Model()
}

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	tx := testutil.NewTransaction("AAPL").
//	    Sell().
//	    WithAmount(5).
//	    WithTimestamp(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID        string
	AssetID   string
	Kind      model.TransactionKind
	Amount    float64
	Price     float64
	Timestamp time.Time
}

// NewTransaction creates a buy TransactionBuilder for assetID with sensible defaults.
func NewTransaction(assetID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:        MakeID(),
		AssetID:   assetID,
		Kind:      model.KindBuy,
		Amount:    10,
		Price:     100,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Sell marks the transaction as a sell.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Kind = model.KindSell
	return b
}

// Dividend marks the transaction as a dividend entry with price 1.
func (b *TransactionBuilder) Dividend() *TransactionBuilder {
	b.Kind = model.KindDividend
	b.Price = 1
	return b
}

// WithAmount sets a custom amount.
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.Amount = amount
	return b
}

// WithPrice sets a custom unit price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = price
	return b
}

// WithTimestamp sets a custom timestamp.
func (b *TransactionBuilder) WithTimestamp(ts time.Time) *TransactionBuilder {
	b.Timestamp = ts
	return b
}

// Model returns the transaction without storing it.
func (b *TransactionBuilder) Model() model.Transaction {
	return model.Transaction{
		ID:        b.ID,
		AssetID:   b.AssetID,
		Kind:      b.Kind,
		Amount:    b.Amount,
		Price:     b.Price,
		Timestamp: b.Timestamp,
	}
}

// Build creates the transaction in the database and returns it.
// The referenced asset must already exist.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, asset_id, type, amount, price, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AssetID, string(b.Kind), b.Amount, b.Price, repository.FormatTime(b.Timestamp))
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return b.Model()
}

// Convenience functions

// CreateHolding creates an asset and a buy transaction of quantity at the
// asset's reference price, producing a holding when the portfolio loads.
//
// Example usage:
//
//	asset := testutil.CreateHolding(t, db, "AAPL", "Technology", 10, 150)
func CreateHolding(t *testing.T, db *sql.DB, id, sector string, quantity, price float64) model.Asset {
	t.Helper()

	asset := NewAsset().WithID(id).WithSector(sector).WithReferencePrice(price).Build(t, db)
	NewTransaction(id).WithAmount(quantity).WithPrice(price).Build(t, db)
	return asset
}

// CreatePriceHistory stores one daily close per value, starting at start.
//
// Example usage:
//
//	testutil.CreatePriceHistory(t, db, "AAPL", start, 100, 110, 100)
func CreatePriceHistory(t *testing.T, db *sql.DB, assetID string, start time.Time, closes ...float64) []model.PricePoint {
	t.Helper()

	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Timestamp: start.AddDate(0, 0, i), Close: c}
	}

	query := `INSERT INTO price_history (asset_id, timestamp, close) VALUES (?, ?, ?)`
	for _, p := range points {
		if _, err := db.Exec(query, assetID, repository.FormatTime(p.Timestamp), p.Close); err != nil {
			t.Fatalf("Failed to create test price: %v", err)
		}
	}
	return points
}

// CreatePendingDividend stores a pending dividend and returns it.
func CreatePendingDividend(t *testing.T, db *sql.DB, assetID string, cash float64) model.PendingDividend {
	t.Helper()

	d := model.PendingDividend{
		ID:         MakeID(),
		AssetID:    assetID,
		CashAmount: cash,
		CreditedAt: time.Now().UTC(),
	}

	query := `INSERT INTO pending_dividend (id, asset_id, cash_amount, credited_at) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(query, d.ID, d.AssetID, d.CashAmount, repository.FormatTime(d.CreditedAt)); err != nil {
		t.Fatalf("Failed to create test pending dividend: %v", err)
	}
	return d
}

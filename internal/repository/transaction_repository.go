package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Rows are only ever inserted; the seq column preserves insertion order.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// AppendTransaction inserts a ledger entry. The referenced asset must exist.
func (r *TransactionRepository) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, asset_id, type, amount, price, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.AssetID,
		string(tx.Kind),
		tx.Amount,
		tx.Price,
		FormatTime(tx.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// LoadTransactions returns the full ledger in insertion order.
func (r *TransactionRepository) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	query := `
		SELECT id, asset_id, type, amount, price, timestamp
		FROM "transaction"
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var kind, timestampStr string

		err := rows.Scan(&t.ID, &t.AssetID, &kind, &t.Amount, &t.Price, &timestampStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		t.Kind = model.TransactionKind(kind)

		t.Timestamp, err = ParseTime(timestampStr)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return transactions, nil
}

// LoadHoldings derives current holdings from the ledger: bought minus sold
// quantity per asset, joined with the asset master data. Assets whose net
// quantity is not positive are omitted. Dividend entries record cash and do
// not change quantity.
func (r *TransactionRepository) LoadHoldings(ctx context.Context) (map[string]model.Holding, error) {
	query := `
		SELECT a.id, a.name, a.sector, a.asset_type, a.reference_price,
			SUM(CASE t.type
				WHEN 'buy' THEN t.amount
				WHEN 'sell' THEN -t.amount
				ELSE 0
			END) AS quantity
		FROM "transaction" t
		JOIN asset a ON a.id = t.asset_id
		GROUP BY a.id
		HAVING quantity > 0
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make(map[string]model.Holding)
	for rows.Next() {
		var h model.Holding

		err := rows.Scan(
			&h.Asset.ID,
			&h.Asset.Name,
			&h.Asset.Sector,
			&h.Asset.Type,
			&h.Asset.ReferencePrice,
			&h.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holdings results: %w", err)
		}
		holdings[h.Asset.ID] = h
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

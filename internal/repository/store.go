package repository

import "database/sql"

// PortfolioStore combines the asset and transaction repositories into the
// persistence a portfolio needs.
type PortfolioStore struct {
	*AssetRepository
	*TransactionRepository
}

// NewPortfolioStore creates a PortfolioStore over db.
func NewPortfolioStore(db *sql.DB) *PortfolioStore {
	return &PortfolioStore{
		AssetRepository:       NewAssetRepository(db),
		TransactionRepository: NewTransactionRepository(db),
	}
}

package model

import "time"

// TransactionKind is the kind of event recorded in the ledger.
type TransactionKind string

const (
	KindBuy      TransactionKind = "buy"
	KindSell     TransactionKind = "sell"
	KindDividend TransactionKind = "dividend"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindBuy, KindSell, KindDividend:
		return true
	}
	return false
}

// Transaction represents a single immutable ledger entry.
// Amount is the quantity traded (or cash credited for dividends) and Price the
// unit price at the time of the event.
type Transaction struct {
	ID        string          `json:"id"`
	AssetID   string          `json:"assetId"`
	Kind      TransactionKind `json:"kind"`
	Amount    float64         `json:"amount"`
	Price     float64         `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// TransactionFilter narrows a ledger query. Zero values mean "no bound".
type TransactionFilter struct {
	AssetID string
	From    time.Time
	To      time.Time
}

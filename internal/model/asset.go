package model

// Asset type classifications carried over from the symbol directory.
const (
	AssetTypeStock  = "stock"
	AssetTypeBond   = "bond"
	AssetTypeCrypto = "crypto"
)

// Asset represents an investable instrument identified by its ticker symbol.
// ID is immutable; Name and ReferencePrice may be refreshed from market data.
type Asset struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Sector         string  `json:"sector"`
	Type           string  `json:"type,omitempty"`
	ReferencePrice float64 `json:"referencePrice"`
}

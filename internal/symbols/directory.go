// Package symbols maps ticker symbols to display names, sectors and asset
// types. A small built-in table covers the common symbols; stored asset data
// and, optionally, the market data provider take precedence over it.
package symbols

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
)

// UnknownName is returned for symbols nobody knows.
const UnknownName = "Unknown Symbol"

// UnknownSector classifies assets without sector information.
const UnknownSector = "Unknown"

// Entry is a built-in symbol definition.
type Entry struct {
	Name   string
	Sector string
	Type   string
}

var builtin = map[string]Entry{
	"AAPL":    {Name: "Apple Inc.", Sector: "Technology", Type: model.AssetTypeStock},
	"MSFT":    {Name: "Microsoft Corporation", Sector: "Technology", Type: model.AssetTypeStock},
	"GOOGL":   {Name: "Alphabet Inc.", Sector: "Communication Services", Type: model.AssetTypeStock},
	"AMZN":    {Name: "Amazon.com, Inc.", Sector: "Consumer Discretionary", Type: model.AssetTypeStock},
	"TSLA":    {Name: "Tesla, Inc.", Sector: "Consumer Discretionary", Type: model.AssetTypeStock},
	"BND":     {Name: "Vanguard Total Bond Market ETF", Sector: "Fixed Income", Type: model.AssetTypeBond},
	"BTC-USD": {Name: "Bitcoin USD", Sector: "Cryptocurrency", Type: model.AssetTypeCrypto},
}

// AssetStore looks up persisted asset master data.
type AssetStore interface {
	GetAsset(ctx context.Context, id string) (model.Asset, error)
}

// NameLookup resolves a display name from an external source.
type NameLookup interface {
	LookupName(ctx context.Context, symbol string) (string, error)
}

// Directory resolves symbols to asset master data.
type Directory struct {
	store  AssetStore
	lookup NameLookup
	log    zerolog.Logger
}

// NewDirectory creates a Directory. store and lookup are optional.
func NewDirectory(store AssetStore, lookup NameLookup, log zerolog.Logger) *Directory {
	return &Directory{
		store:  store,
		lookup: lookup,
		log:    log.With().Str("component", "symbols").Logger(),
	}
}

// Normalize upper-cases and trims a symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Symbols returns the built-in symbols in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(builtin))
	for s := range builtin {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Lookup returns the built-in entry for symbol.
func Lookup(symbol string) (Entry, bool) {
	e, ok := builtin[Normalize(symbol)]
	return e, ok
}

// NameOf returns the display name of symbol: the stored name, then the
// built-in name, otherwise UnknownName. It never calls the network.
func (d *Directory) NameOf(ctx context.Context, symbol string) string {
	symbol = Normalize(symbol)
	if d.store != nil {
		if a, err := d.store.GetAsset(ctx, symbol); err == nil && a.Name != "" {
			return a.Name
		}
	}
	if e, ok := builtin[symbol]; ok {
		return e.Name
	}
	return UnknownName
}

// Resolve returns the asset master data for symbol. Stored data wins over
// the built-in table; for symbols neither knows, the name comes from the
// market data provider when one is configured. Resolve never fails: an
// unknown symbol resolves to an asset named UnknownName.
func (d *Directory) Resolve(ctx context.Context, symbol string) model.Asset {
	symbol = Normalize(symbol)

	if d.store != nil {
		a, err := d.store.GetAsset(ctx, symbol)
		switch {
		case err == nil:
			return a
		case !errors.Is(err, apperrors.ErrAssetNotFound):
			d.log.Warn().Err(err).Str("symbol", symbol).Msg("Asset lookup failed")
		}
	}

	if e, ok := builtin[symbol]; ok {
		return model.Asset{ID: symbol, Name: e.Name, Sector: e.Sector, Type: e.Type}
	}

	asset := model.Asset{ID: symbol, Name: UnknownName, Sector: UnknownSector, Type: model.AssetTypeStock}
	if d.lookup != nil {
		name, err := d.lookup.LookupName(ctx, symbol)
		if err != nil {
			d.log.Debug().Err(err).Str("symbol", symbol).Msg("Name lookup failed")
		} else if name != "" {
			asset.Name = name
		}
	}
	return asset
}

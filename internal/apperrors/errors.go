package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAssetNotFound indicates that no asset with the given symbol is known.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrHoldingNotFound indicates that the portfolio does not hold the asset.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientQuantity indicates that a sell cannot be completed because
	// the portfolio holds less of the asset than requested (or none at all).
	ErrInsufficientQuantity = errors.New("insufficient quantity to sell")

	// ErrEmptyInput indicates that an allocation was requested for an empty asset set.
	ErrEmptyInput = errors.New("empty input")

	// ErrDegenerateWeights indicates that every priority is zero, so no
	// fractional split exists.
	ErrDegenerateWeights = errors.New("degenerate weights: all priorities are zero")

	// ErrNegativePriority indicates that an allocation priority is below zero.
	ErrNegativePriority = errors.New("priority cannot be negative")

	// ErrInvalidQuantity indicates a transaction amount that is not strictly positive.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice indicates a negative unit price.
	ErrInvalidPrice = errors.New("price cannot be negative")

	// ErrInvalidTransactionKind indicates a kind other than buy, sell or dividend.
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)

// Collaborator errors represent failures of the systems the core calls into.
var (
	// ErrPriceUnavailable indicates that the market data provider could not
	// produce a usable price in time.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveHoldings     = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrievePrice        = errors.New("failed to retrieve price")
	ErrFailedToRetrievePriceHistory = errors.New("failed to retrieve price history")
	ErrFailedToSyncPriceHistory     = errors.New("failed to sync price history")
	ErrFailedToExecuteTrade         = errors.New("failed to execute trade")
	ErrFailedToRebalance            = errors.New("failed to rebalance portfolio")
	ErrFailedToCreditDividend       = errors.New("failed to credit dividend")
	ErrFailedToReinvestDividends    = errors.New("failed to reinvest dividends")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
)

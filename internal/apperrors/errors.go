package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrNotSellTrade indicates that a gain calculation was requested for a
	// trade that is not a sell.
	ErrNotSellTrade = errors.New("trade is not a sell")

	// ErrUnknownMethod indicates an unsupported cost-basis accounting method.
	// Rejected before any replay begins.
	ErrUnknownMethod = errors.New("unknown cost-basis method")

	// ErrInvalidTrade indicates that a trade failed ingestion validation
	// (non-positive quantity, negative value or fee). The gain engine never
	// sees such trades; they are rejected at the ledger boundary.
	ErrInvalidTrade = errors.New("invalid trade")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidYear indicates that a report year is outside the accepted range.
	ErrInvalidYear = errors.New("invalid report year")

	// ErrDuplicateEntry indicates that an entity with the same unique
	// constraint (external reference) already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Data integrity errors represent inconsistencies in the recorded ledger.
var (
	// ErrInsufficientLots indicates that a sell could not be fully matched
	// against prior acquisitions. The per-sell report carries the exact
	// unmatched remainder; this sentinel exists for callers that treat an
	// incomplete report as a hard failure.
	ErrInsufficientLots = errors.New("insufficient lots to match sell")
)

// Operation failure errors represent system-level failures when retrieving
// or processing data.
var (
	ErrFailedToRetrieveTrades  = errors.New("failed to retrieve trades")
	ErrFailedToRetrieveTrade   = errors.New("failed to retrieve trade")
	ErrFailedToRetrieveSummary = errors.New("failed to retrieve trade summary")
	ErrFailedToComputeReport   = errors.New("failed to compute gain report")
)

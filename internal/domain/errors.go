package domain

import "errors"

// Sentinel errors for domain-level error handling.
//
// Placement-time errors (invalid order, insufficient funds/assets) surface
// directly to the submitting party and leave no state behind. An unpriceable
// match is not an error at all: the engine silently defers it to a later
// clearing pass. ErrInvariantViolation is never returned; it is the panic
// value wrapped when a reservation-guaranteed settlement fails, which means
// the ledger bookkeeping is corrupt and the simulation must not continue.
var (
	ErrInvalidOrder        = errors.New("invalid_order")
	ErrNonPositiveQuantity = errors.New("non_positive_quantity")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrInsufficientAssets  = errors.New("insufficient_assets")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrAssetNotFound       = errors.New("asset_not_found")
	ErrPartyNotFound       = errors.New("party_not_found")
	ErrPartyAlreadyExists  = errors.New("party_already_exists")
	ErrNoPriceHistory      = errors.New("no_price_history")
	ErrInvariantViolation  = errors.New("invariant_violation")
)

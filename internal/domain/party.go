package domain

import "github.com/shopspring/decimal"

// Party is the investor-side boundary the engine settles against. Funds
// and assets are reserved by the party before an order is submitted, so
// under correct usage SettleBuy and SettleSell never fail; the engine
// treats an error from either as an invariant violation and aborts.
type Party interface {
	ID() string

	// SettleBuy is invoked on the bid party of a trade. It debits
	// price×quantity of cash, releases the given amount of the cash
	// reservation taken at placement, and records the acquisition.
	SettleBuy(asset string, price decimal.Decimal, quantity int64, release decimal.Decimal) error

	// SettleSell is invoked on the ask party of a trade. It releases
	// quantity units of the asset reservation, disposes the party's
	// purchase lots, and credits the proceeds.
	SettleSell(asset string, price decimal.Decimal, quantity int64) error

	// ReleaseCash and ReleaseAsset undo a reservation when a resting
	// order is cancelled before being (fully) filled.
	ReleaseCash(amount decimal.Decimal)
	ReleaseAsset(asset string, quantity int64)
}

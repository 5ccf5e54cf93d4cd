package domain

import "github.com/shopspring/decimal"

// Tick is the fixed decimal precision disclosed trade prices are rounded
// to. One Tick is configured per exchange and applied in exactly one
// place, the engine's match step.
type Tick struct {
	decimals int32
}

// NewTick creates a Tick with the given number of decimal places.
func NewTick(decimals int32) Tick {
	return Tick{decimals: decimals}
}

// Round rounds a price to the tick precision, half away from zero.
func (t Tick) Round(price decimal.Decimal) decimal.Decimal {
	return price.Round(t.decimals)
}

// Decimals returns the configured number of decimal places.
func (t Tick) Decimals() int32 {
	return t.decimals
}

package investor

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/domain"
)

// RandomTrader is a seeded heuristic strategy for simulation runs: each
// call places one order around a reference price, mostly limit orders
// with the occasional market or stop order. Placements rejected for
// insufficient funds or assets are reported back as errors and are
// harmless; the account was left untouched.
type RandomTrader struct {
	inv  *Investor
	rng  *rand.Rand
	tick domain.Tick
}

// NewRandomTrader wraps an investor with a deterministic random strategy.
func NewRandomTrader(inv *Investor, tick domain.Tick, seed int64) *RandomTrader {
	return &RandomTrader{
		inv:  inv,
		rng:  rand.New(rand.NewSource(seed)),
		tick: tick,
	}
}

// Investor returns the wrapped investor.
func (t *RandomTrader) Investor() *Investor {
	return t.inv
}

// PlaceOne submits one order for the asset around the reference price
// (typically the last trade price, or an opening estimate). Returns the
// order ID, or the placement error.
func (t *RandomTrader) PlaceOne(asset string, ref decimal.Decimal) (string, error) {
	price := t.price(ref)
	quantity := 500 + t.rng.Int63n(1500)

	var kind domain.OrderKind
	switch roll := t.rng.Float64(); {
	case roll < 0.05:
		kind = domain.Market()
	case roll < 0.95:
		kind = domain.Limit(price)
	default:
		kind = domain.Stop(price)
	}

	if t.rng.Intn(2) == 0 {
		return t.inv.PlaceBid(asset, kind, quantity)
	}
	return t.inv.PlaceAsk(asset, kind, quantity)
}

// price draws a price normally distributed around the reference and
// rounds it to the tick, clamping at one tick above zero.
func (t *RandomTrader) price(ref decimal.Decimal) decimal.Decimal {
	refF, _ := ref.Float64()
	drawn := decimal.NewFromFloat(refF + t.rng.NormFloat64()*0.2)
	drawn = t.tick.Round(drawn)

	minimum := decimal.New(1, -t.tick.Decimals())
	if drawn.LessThan(minimum) {
		return minimum
	}
	return drawn
}

// Fund seeds the trader's account with cash and an initial position in
// each asset at the given opening price.
func (t *RandomTrader) Fund(cash decimal.Decimal, assets []string, openingPrice decimal.Decimal, quantity int64) {
	t.inv.Account().Deposit(cash)
	for _, asset := range assets {
		t.inv.Account().DepositAsset(asset, openingPrice, quantity)
	}
}

// compile-time check that Investor satisfies the settlement boundary.
var _ domain.Party = (*Investor)(nil)

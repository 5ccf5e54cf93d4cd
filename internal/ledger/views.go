package ledger

import "github.com/shopspring/decimal"

// Read-only derived views over the account. All are snapshots: the
// returned values do not alias internal state.

// Cash returns the current cash balance.
func (a *Account) Cash() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// ReservedCash returns the cash currently earmarked by resting bids.
func (a *Account) ReservedCash() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reservedCash
}

// AvailableCash returns cash not earmarked by resting bids.
func (a *Account) AvailableCash() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash.Sub(a.reservedCash)
}

// PortfolioQuantity returns the owned quantity of one asset.
func (a *Account) PortfolioQuantity(asset string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ownedLocked(asset)
}

// ReservedQuantity returns the quantity of an asset earmarked by resting
// asks.
func (a *Account) ReservedQuantity(asset string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reservedQty[asset]
}

// PortfolioQuantities returns the owned quantity per asset.
func (a *Account) PortfolioQuantities() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]int64, len(a.lots))
	for asset := range a.lots {
		if q := a.ownedLocked(asset); q > 0 {
			out[asset] = q
		}
	}
	return out
}

// Lots returns copies of the asset's remaining purchase lots in
// acquisition order.
func (a *Account) Lots(asset string) []Lot {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Lot, 0, len(a.lots[asset]))
	for _, lot := range a.lots[asset] {
		out = append(out, *lot)
	}
	return out
}

// History returns the transaction history, oldest first.
func (a *Account) History() []TransactionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]TransactionRecord, len(a.history))
	copy(out, a.history)
	return out
}

// TotalValue marks the account to market: cash plus each lot's remaining
// quantity valued at the current price supplied by the pricer. Assets
// the pricer has no price for contribute nothing.
func (a *Account) TotalValue(pricer func(asset string) (decimal.Decimal, bool)) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := a.cash
	for asset, lots := range a.lots {
		price, ok := pricer(asset)
		if !ok {
			continue
		}
		for _, lot := range lots {
			total = total.Add(price.Mul(decimal.NewFromInt(lot.Remaining)))
		}
	}
	return total
}

// MeanAcquisitionPrice returns the historical mean price paid for an
// asset, with sell legs counted as negative-price contributions over the
// summed quantity of both legs, consistent with the signed cash delta
// convention of the history. The second return is false when the asset
// has no buy or sell history.
func (a *Account) MeanAcquisitionPrice(asset string) (decimal.Decimal, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sum := decimal.Zero
	var quantity int64
	for _, r := range a.history {
		if r.Asset != asset {
			continue
		}
		switch r.Kind {
		case RecordBuy:
			sum = sum.Add(r.Price.Mul(decimal.NewFromInt(r.Quantity)))
		case RecordSell:
			sum = sum.Sub(r.Price.Mul(decimal.NewFromInt(r.Quantity)))
		default:
			continue
		}
		quantity += r.Quantity
	}
	if quantity == 0 {
		return decimal.Decimal{}, false
	}
	return sum.Div(decimal.NewFromInt(quantity)), true
}

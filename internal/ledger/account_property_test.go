package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// Reservations may never exceed holdings, no matter the operation order.
func TestProperty_ReservationsNeverExceedHoldings(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAccount(DisposalFIFO)

		t.Repeat(map[string]func(*rapid.T){
			"deposit": func(t *rapid.T) {
				a.Deposit(decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "amount")))
			},
			"withdraw": func(t *rapid.T) {
				a.Withdraw(decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "amount")))
			},
			"depositAsset": func(t *rapid.T) {
				a.DepositAsset("NOK",
					decimal.New(rapid.Int64Range(100, 1000).Draw(t, "price"), -2),
					rapid.Int64Range(1, 100).Draw(t, "qty"))
			},
			"reserveCash": func(t *rapid.T) {
				a.ReserveCash(decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "amount")))
			},
			"releaseCash": func(t *rapid.T) {
				a.ReleaseCash(decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "amount")))
			},
			"reserveAsset": func(t *rapid.T) {
				a.ReserveAsset("NOK", rapid.Int64Range(1, 100).Draw(t, "qty"))
			},
			"releaseAsset": func(t *rapid.T) {
				a.ReleaseAsset("NOK", rapid.Int64Range(1, 100).Draw(t, "qty"))
			},
			"sell": func(t *rapid.T) {
				qty := rapid.Int64Range(1, 100).Draw(t, "qty")
				if a.ReserveAsset("NOK", qty) != nil {
					return
				}
				a.SettleSell("NOK", decimal.New(rapid.Int64Range(100, 1000).Draw(t, "price"), -2), qty)
			},
			"": func(t *rapid.T) {
				if a.ReservedCash().GreaterThan(a.Cash()) {
					t.Fatalf("reserved cash %s exceeds cash %s", a.ReservedCash(), a.Cash())
				}
				if reserved, owned := a.ReservedQuantity("NOK"), a.PortfolioQuantity("NOK"); reserved > owned {
					t.Fatalf("reserved quantity %d exceeds owned %d", reserved, owned)
				}
				if a.Cash().IsNegative() {
					t.Fatalf("cash went negative: %s", a.Cash())
				}
			},
		})
	})
}

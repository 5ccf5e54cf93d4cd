package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaakso/bourse/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDepositWithdraw(t *testing.T) {
	a := NewAccount(DisposalFIFO)

	a.Deposit(d("1000"))
	assert.True(t, a.Cash().Equal(d("1000")))

	require.NoError(t, a.Withdraw(d("400")))
	assert.True(t, a.Cash().Equal(d("600")))

	err := a.Withdraw(d("601"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, a.Cash().Equal(d("600")), "failed withdrawal must not change cash")

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, RecordDeposit, history[0].Kind)
	assert.True(t, history[0].CashDelta.Equal(d("1000")))
	assert.Equal(t, RecordWithdraw, history[1].Kind)
	assert.True(t, history[1].CashDelta.Equal(d("-400")))
	assert.True(t, history[1].ResultingCash.Equal(d("600")))
}

func TestWithdraw_CannotTouchReservedCash(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.Deposit(d("1000"))
	require.NoError(t, a.ReserveCash(d("800")))

	err := a.Withdraw(d("300"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	require.NoError(t, a.Withdraw(d("200")))
}

func TestReserveCash(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.Deposit(d("500"))

	require.NoError(t, a.ReserveCash(d("300")))
	assert.True(t, a.ReservedCash().Equal(d("300")))
	assert.True(t, a.AvailableCash().Equal(d("200")))

	// Over-reservation fails atomically.
	err := a.ReserveCash(d("201"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, a.ReservedCash().Equal(d("300")), "failed reserve must not change the counter")

	require.NoError(t, a.ReserveCash(d("200")))
	assert.True(t, a.AvailableCash().IsZero())

	a.ReleaseCash(d("9999"))
	assert.True(t, a.ReservedCash().IsZero(), "release floors at zero")
}

func TestReserveAsset(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.DepositAsset("NOK", d("5"), 100)

	require.NoError(t, a.ReserveAsset("NOK", 60))
	assert.Equal(t, int64(60), a.ReservedQuantity("NOK"))

	err := a.ReserveAsset("NOK", 41)
	assert.ErrorIs(t, err, domain.ErrInsufficientAssets)
	assert.Equal(t, int64(60), a.ReservedQuantity("NOK"))

	err = a.ReserveAsset("FUM", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientAssets)

	a.ReleaseAsset("NOK", 100)
	assert.Equal(t, int64(0), a.ReservedQuantity("NOK"))
}

func TestSettleBuy(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.Deposit(d("1000"))
	require.NoError(t, a.ReserveCash(d("600"))) // reserved at limit rate 6 × 100

	// Filled at 5, better than the reserved rate; the release is the
	// reserved amount, not the trade cost.
	require.NoError(t, a.SettleBuy("NOK", d("5"), 100, d("600")))

	assert.True(t, a.Cash().Equal(d("500")))
	assert.True(t, a.ReservedCash().IsZero())
	assert.Equal(t, int64(100), a.PortfolioQuantity("NOK"))

	lots := a.Lots("NOK")
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Price.Equal(d("5")))
	assert.Equal(t, int64(100), lots[0].Remaining)

	history := a.History()
	last := history[len(history)-1]
	assert.Equal(t, RecordBuy, last.Kind)
	assert.True(t, last.CashDelta.Equal(d("-500")))
}

func TestSettleSell_FIFO(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.DepositAsset("NOK", d("2"), 10)
	a.DepositAsset("NOK", d("3"), 10)
	require.NoError(t, a.ReserveAsset("NOK", 15))

	pl, err := a.SettleSell("NOK", d("4"), 15)
	require.NoError(t, err)

	// Cost of consumed lots: 10×2 + 5×3 = 35; proceeds 60.
	assert.True(t, pl.Equal(d("25")), "got P&L %s", pl)
	assert.True(t, a.Cash().Equal(d("60")))
	assert.Equal(t, int64(5), a.PortfolioQuantity("NOK"))
	assert.Equal(t, int64(0), a.ReservedQuantity("NOK"))

	lots := a.Lots("NOK")
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Price.Equal(d("3")), "oldest lot must be consumed first")
}

func TestSettleSell_LIFO(t *testing.T) {
	a := NewAccount(DisposalLIFO)
	a.DepositAsset("NOK", d("2"), 10)
	a.DepositAsset("NOK", d("3"), 10)
	require.NoError(t, a.ReserveAsset("NOK", 15))

	pl, err := a.SettleSell("NOK", d("4"), 15)
	require.NoError(t, err)

	// Cost of consumed lots: 10×3 + 5×2 = 40; proceeds 60.
	assert.True(t, pl.Equal(d("20")), "got P&L %s", pl)

	lots := a.Lots("NOK")
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Price.Equal(d("2")), "newest lot must be consumed first")
	assert.Equal(t, int64(5), lots[0].Remaining)
}

func TestSettleSell_LotExhaustion(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.DepositAsset("NOK", d("2"), 10)

	_, err := a.SettleSell("NOK", d("4"), 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientAssets)
	assert.Equal(t, int64(10), a.PortfolioQuantity("NOK"), "failed disposal must not consume lots")
	assert.True(t, a.Cash().IsZero())
}

func TestWithdrawAsset(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.DepositAsset("NOK", d("2"), 10)
	require.NoError(t, a.ReserveAsset("NOK", 5))

	err := a.WithdrawAsset("NOK", 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientAssets, "reserved quantity is not withdrawable")

	require.NoError(t, a.WithdrawAsset("NOK", 5))
	assert.Equal(t, int64(5), a.PortfolioQuantity("NOK"))
	assert.True(t, a.Cash().IsZero(), "asset withdrawal moves no cash")
}

func TestMeanAcquisitionPrice(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.Deposit(d("10000"))

	require.NoError(t, a.SettleBuy("NOK", d("5"), 100, decimal.Zero))
	require.NoError(t, a.SettleBuy("NOK", d("7"), 100, decimal.Zero))
	require.NoError(t, a.ReserveAsset("NOK", 50))
	_, err := a.SettleSell("NOK", d("6"), 50)
	require.NoError(t, err)

	// (5×100 + 7×100 − 6×50) / (100 + 100 + 50) = 900 / 250
	mean, ok := a.MeanAcquisitionPrice("NOK")
	require.True(t, ok)
	assert.True(t, mean.Equal(d("3.6")), "got %s", mean)

	_, ok = a.MeanAcquisitionPrice("FUM")
	assert.False(t, ok)
}

func TestTotalValue(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.Deposit(d("100"))
	a.DepositAsset("NOK", d("5"), 10)
	a.DepositAsset("FUM", d("2"), 4)

	prices := map[string]decimal.Decimal{
		"NOK": d("6"),
		// FUM has no current price and contributes nothing.
	}
	pricer := func(asset string) (decimal.Decimal, bool) {
		p, ok := prices[asset]
		return p, ok
	}

	// 100 cash + 10 × 6
	assert.True(t, a.TotalValue(pricer).Equal(d("160")))
}

func TestPortfolioQuantities(t *testing.T) {
	a := NewAccount(DisposalFIFO)
	a.DepositAsset("NOK", d("5"), 10)
	a.DepositAsset("NOK", d("6"), 5)
	a.DepositAsset("FUM", d("2"), 4)

	assert.Equal(t, map[string]int64{"NOK": 15, "FUM": 4}, a.PortfolioQuantities())
}

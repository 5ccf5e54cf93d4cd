package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/domain"
)

// DisposalMethod selects the order purchase lots are consumed in when
// selling.
type DisposalMethod string

const (
	DisposalFIFO DisposalMethod = "fifo"
	DisposalLIFO DisposalMethod = "lifo"
)

// RecordKind labels a transaction history entry.
type RecordKind string

const (
	RecordDeposit       RecordKind = "deposit"
	RecordWithdraw      RecordKind = "withdraw"
	RecordAssetDeposit  RecordKind = "asset_deposit"
	RecordAssetWithdraw RecordKind = "asset_withdraw"
	RecordBuy           RecordKind = "buy"
	RecordSell          RecordKind = "sell"
)

// TransactionRecord is an immutable snapshot of one account movement.
// CashDelta is signed: deposits, and sale proceeds are positive;
// withdrawals and purchase costs negative. ResultingCash is the cash
// balance after the movement.
type TransactionRecord struct {
	Sequence      uint64
	Time          time.Time
	Kind          RecordKind
	Asset         string
	Price         decimal.Decimal
	Quantity      int64
	CashDelta     decimal.Decimal
	ResultingCash decimal.Decimal
	ProfitLoss    decimal.Decimal // realized P&L, sell records only
}

// Lot is a cost-basis batch: one acquisition of an asset at a price,
// consumed on disposal.
type Lot struct {
	Asset     string
	Price     decimal.Decimal
	Remaining int64
	Sequence  uint64
}

// Account is a per-investor ledger: cash, reservation counters, purchase
// lots per asset, and an append-only transaction history.
//
// Reservations are the account's sole safety mechanism against
// double-spending across simultaneously resting orders: funds and assets
// are earmarked atomically at order placement, and the earmark is
// removed exactly once per unit, on settlement or on cancellation.
type Account struct {
	mu           sync.Mutex
	cash         decimal.Decimal
	reservedCash decimal.Decimal
	reservedQty  map[string]int64
	lots         map[string][]*Lot
	history      []TransactionRecord
	disposal     DisposalMethod
	seq          uint64
}

// NewAccount creates an empty account using the given lot disposal
// method.
func NewAccount(disposal DisposalMethod) *Account {
	if disposal != DisposalLIFO {
		disposal = DisposalFIFO
	}
	return &Account{
		reservedQty: make(map[string]int64),
		lots:        make(map[string][]*Lot),
		disposal:    disposal,
	}
}

// record appends a history entry. Caller must hold the lock.
func (a *Account) record(r TransactionRecord) {
	a.seq++
	r.Sequence = a.seq
	r.Time = time.Now()
	r.ResultingCash = a.cash
	a.history = append(a.history, r)
}

// Deposit credits cash to the account.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cash = a.cash.Add(amount)
	a.record(TransactionRecord{Kind: RecordDeposit, CashDelta: amount})
}

// Withdraw debits cash from the account. Reserved cash cannot be
// withdrawn.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.cash.Sub(a.reservedCash)) {
		return domain.ErrInsufficientFunds
	}
	a.cash = a.cash.Sub(amount)
	a.record(TransactionRecord{Kind: RecordWithdraw, CashDelta: amount.Neg()})
	return nil
}

// DepositAsset seeds a purchase lot at the given cost basis without any
// cash movement.
func (a *Account) DepositAsset(asset string, price decimal.Decimal, quantity int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	a.lots[asset] = append(a.lots[asset], &Lot{
		Asset:     asset,
		Price:     price,
		Remaining: quantity,
		Sequence:  a.seq,
	})
	a.record(TransactionRecord{Kind: RecordAssetDeposit, Asset: asset, Price: price, Quantity: quantity})
}

// WithdrawAsset disposes lots of the asset without any cash movement.
// Reserved quantity cannot be withdrawn.
func (a *Account) WithdrawAsset(asset string, quantity int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if quantity > a.ownedLocked(asset)-a.reservedQty[asset] {
		return domain.ErrInsufficientAssets
	}
	if _, err := a.dispose(asset, quantity); err != nil {
		return err
	}
	a.record(TransactionRecord{Kind: RecordAssetWithdraw, Asset: asset, Quantity: quantity})
	return nil
}

// ReserveCash earmarks cash for an order about to be placed. The check
// and the increment are one atomic step; on failure nothing changes.
func (a *Account) ReserveCash(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	available := a.cash.Sub(a.reservedCash)
	if amount.GreaterThan(available) {
		return domain.ErrInsufficientFunds
	}
	a.reservedCash = a.reservedCash.Add(amount)
	return nil
}

// ReleaseCash removes a cash earmark. Never drops the counter below
// zero.
func (a *Account) ReleaseCash(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseCashLocked(amount)
}

func (a *Account) releaseCashLocked(amount decimal.Decimal) {
	a.reservedCash = a.reservedCash.Sub(amount)
	if a.reservedCash.IsNegative() {
		a.reservedCash = decimal.Zero
	}
}

// ReserveAsset earmarks quantity units of an asset for an order about to
// be placed. The check and the increment are one atomic step; on failure
// nothing changes.
func (a *Account) ReserveAsset(asset string, quantity int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	available := a.ownedLocked(asset) - a.reservedQty[asset]
	if quantity > available {
		return domain.ErrInsufficientAssets
	}
	a.reservedQty[asset] += quantity
	return nil
}

// ReleaseAsset removes an asset earmark. Never drops the counter below
// zero.
func (a *Account) ReleaseAsset(asset string, quantity int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseAssetLocked(asset, quantity)
}

func (a *Account) releaseAssetLocked(asset string, quantity int64) {
	a.reservedQty[asset] -= quantity
	if a.reservedQty[asset] <= 0 {
		delete(a.reservedQty, asset)
	}
}

// SettleBuy applies a filled bid: debits price×quantity of cash,
// releases the given amount of the cash reservation taken at placement,
// appends a new lot at the trade price, and records the purchase.
func (a *Account) SettleBuy(asset string, price decimal.Decimal, quantity int64, release decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cost := price.Mul(decimal.NewFromInt(quantity))
	a.cash = a.cash.Sub(cost)
	a.releaseCashLocked(release)

	a.seq++
	a.lots[asset] = append(a.lots[asset], &Lot{
		Asset:     asset,
		Price:     price,
		Remaining: quantity,
		Sequence:  a.seq,
	})
	a.record(TransactionRecord{
		Kind:      RecordBuy,
		Asset:     asset,
		Price:     price,
		Quantity:  quantity,
		CashDelta: cost.Neg(),
	})
	return nil
}

// SettleSell applies a filled ask: releases quantity units of the asset
// reservation, disposes lots per the account's disposal method, credits
// the proceeds, and records the sale with its realized profit or loss
// (proceeds minus the cost of exactly the lots consumed).
//
// Lot exhaustion returns ErrInsufficientAssets. That path cannot be
// reached when the quantity was reserved before the order was placed.
func (a *Account) SettleSell(asset string, price decimal.Decimal, quantity int64) (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	invested, err := a.dispose(asset, quantity)
	if err != nil {
		return decimal.Decimal{}, err
	}
	a.releaseAssetLocked(asset, quantity)

	proceeds := price.Mul(decimal.NewFromInt(quantity))
	profitLoss := proceeds.Sub(invested)
	a.cash = a.cash.Add(proceeds)

	a.record(TransactionRecord{
		Kind:       RecordSell,
		Asset:      asset,
		Price:      price,
		Quantity:   quantity,
		CashDelta:  proceeds,
		ProfitLoss: profitLoss,
	})
	return profitLoss, nil
}

// dispose consumes quantity units from the asset's lot queue, oldest
// first for FIFO, newest first for LIFO, and returns the summed cost of
// the consumed units. Exhausted lots are deleted. Caller must hold the
// lock. Nothing is modified on failure.
func (a *Account) dispose(asset string, quantity int64) (decimal.Decimal, error) {
	if a.ownedLocked(asset) < quantity {
		return decimal.Decimal{}, domain.ErrInsufficientAssets
	}

	invested := decimal.Zero
	remaining := quantity
	lots := a.lots[asset]
	for remaining > 0 {
		var lot *Lot
		if a.disposal == DisposalLIFO {
			lot = lots[len(lots)-1]
		} else {
			lot = lots[0]
		}

		settle := remaining
		if lot.Remaining < settle {
			settle = lot.Remaining
		}
		lot.Remaining -= settle
		remaining -= settle
		invested = invested.Add(lot.Price.Mul(decimal.NewFromInt(settle)))

		if lot.Remaining == 0 {
			if a.disposal == DisposalLIFO {
				lots = lots[:len(lots)-1]
			} else {
				lots = lots[1:]
			}
		}
	}

	if len(lots) == 0 {
		delete(a.lots, asset)
	} else {
		a.lots[asset] = lots
	}
	return invested, nil
}

// ownedLocked sums the remaining quantity across the asset's lots.
// Caller must hold the lock.
func (a *Account) ownedLocked(asset string) int64 {
	var total int64
	for _, lot := range a.lots[asset] {
		total += lot.Remaining
	}
	return total
}

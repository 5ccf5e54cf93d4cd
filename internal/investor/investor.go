package investor

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/domain"
	"github.com/mlaakso/bourse/internal/exchange"
	"github.com/mlaakso/bourse/internal/ledger"
)

// Investor is the party boundary: it owns an account, reserves funds or
// assets before every submission, and receives the engine's settlement
// callbacks. What to submit is decided elsewhere (see RandomTrader or
// any external strategy).
type Investor struct {
	id      string
	name    string
	account *ledger.Account
	ex      *exchange.Exchange
}

// New creates an investor with an empty account and registers it as a
// settlement party on the exchange.
func New(name string, ex *exchange.Exchange, disposal ledger.DisposalMethod) (*Investor, error) {
	inv := &Investor{
		id:      uuid.New().String(),
		name:    name,
		account: ledger.NewAccount(disposal),
		ex:      ex,
	}
	if err := ex.RegisterParty(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ID returns the party identifier.
func (inv *Investor) ID() string {
	return inv.id
}

// Name returns the investor's display name.
func (inv *Investor) Name() string {
	return inv.name
}

// Account returns the investor's ledger account.
func (inv *Investor) Account() *ledger.Account {
	return inv.account
}

// bidRate is the per-unit cash rate a bid of the given kind reserves:
// the limit price, the stop trigger, or the asset's last trade price for
// market bids. A market bid on an asset with no price history cannot be
// meaningfully reserved and is rejected.
func (inv *Investor) bidRate(asset string, kind domain.OrderKind) (decimal.Decimal, error) {
	switch kind.Type {
	case domain.OrderKindLimit:
		return kind.Price, nil
	case domain.OrderKindStop:
		return kind.Trigger, nil
	default:
		last, ok := inv.ex.LastPrice(asset)
		if !ok {
			return decimal.Decimal{}, domain.ErrNoPriceHistory
		}
		return last, nil
	}
}

// PlaceBid reserves cash and submits a buy order. The reservation is
// rolled back if the submission is rejected.
func (inv *Investor) PlaceBid(asset string, kind domain.OrderKind, quantity int64) (string, error) {
	rate, err := inv.bidRate(asset, kind)
	if err != nil {
		return "", err
	}
	total := rate.Mul(decimal.NewFromInt(quantity))
	if err := inv.account.ReserveCash(total); err != nil {
		return "", err
	}

	orderID, err := inv.ex.SubmitOrder(exchange.OrderRequest{
		Asset:        asset,
		PartyID:      inv.id,
		Side:         domain.OrderSideBid,
		Kind:         kind,
		Quantity:     quantity,
		ReservedRate: rate,
	})
	if err != nil {
		inv.account.ReleaseCash(total)
		return "", err
	}
	return orderID, nil
}

// PlaceAsk reserves the asset quantity and submits a sell order. The
// reservation is rolled back if the submission is rejected.
func (inv *Investor) PlaceAsk(asset string, kind domain.OrderKind, quantity int64) (string, error) {
	if err := inv.account.ReserveAsset(asset, quantity); err != nil {
		return "", err
	}

	orderID, err := inv.ex.SubmitOrder(exchange.OrderRequest{
		Asset:    asset,
		PartyID:  inv.id,
		Side:     domain.OrderSideAsk,
		Kind:     kind,
		Quantity: quantity,
	})
	if err != nil {
		inv.account.ReleaseAsset(asset, quantity)
		return "", err
	}
	return orderID, nil
}

// CancelOrder cancels a resting order, releasing its reservation.
func (inv *Investor) CancelOrder(asset, orderID string) bool {
	return inv.ex.CancelOrder(asset, orderID)
}

// SettleBuy implements domain.Party.
func (inv *Investor) SettleBuy(asset string, price decimal.Decimal, quantity int64, release decimal.Decimal) error {
	return inv.account.SettleBuy(asset, price, quantity, release)
}

// SettleSell implements domain.Party.
func (inv *Investor) SettleSell(asset string, price decimal.Decimal, quantity int64) error {
	_, err := inv.account.SettleSell(asset, price, quantity)
	return err
}

// ReleaseCash implements domain.Party.
func (inv *Investor) ReleaseCash(amount decimal.Decimal) {
	inv.account.ReleaseCash(amount)
}

// ReleaseAsset implements domain.Party.
func (inv *Investor) ReleaseAsset(asset string, quantity int64) {
	inv.account.ReleaseAsset(asset, quantity)
}

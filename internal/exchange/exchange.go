package exchange

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/domain"
	"github.com/mlaakso/bourse/internal/engine"
)

// OrderRequest describes one order submission at the exchange boundary.
// ReservedRate is the per-unit cash rate the party reserved before
// submitting; it travels with the order so settlement and cancellation
// release exactly what was taken. Asks leave it zero.
type OrderRequest struct {
	Asset        string
	PartyID      string
	Side         domain.OrderSide
	Kind         domain.OrderKind
	Quantity     int64
	ReservedRate decimal.Decimal
}

// Exchange is a collection of per-asset book/engine pairs plus the
// registered parties. It exposes the boundary operations consumed by
// investor strategies and the simulation driver.
type Exchange struct {
	tick domain.Tick
	seq  *engine.Sequencer

	mu      sync.RWMutex
	engines map[string]*engine.Engine
	parties map[string]domain.Party
}

// New creates an exchange with the given tick precision and assets.
func New(tick domain.Tick, assets ...string) *Exchange {
	x := &Exchange{
		tick:    tick,
		seq:     engine.NewSequencer(),
		engines: make(map[string]*engine.Engine),
		parties: make(map[string]domain.Party),
	}
	for _, asset := range assets {
		x.RegisterAsset(asset)
	}
	return x
}

// RegisterAsset creates a book/engine pair for the asset. Registering an
// existing asset is a no-op; the pair's trade history is never reset.
func (x *Exchange) RegisterAsset(asset string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.engines[asset]; ok {
		return
	}
	x.engines[asset] = engine.NewEngine(asset, x.tick, x.seq)
}

// Assets returns the registered assets in stable order.
func (x *Exchange) Assets() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]string, 0, len(x.engines))
	for asset := range x.engines {
		out = append(out, asset)
	}
	sort.Strings(out)
	return out
}

// RegisterParty adds a settlement party to the exchange.
func (x *Exchange) RegisterParty(p domain.Party) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.parties[p.ID()]; ok {
		return domain.ErrPartyAlreadyExists
	}
	x.parties[p.ID()] = p
	return nil
}

func (x *Exchange) engineFor(asset string) (*engine.Engine, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	eng, ok := x.engines[asset]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return eng, nil
}

// SubmitOrder validates and enqueues an order, returning its ID. The
// caller must have reserved the backing funds or assets first; the
// exchange does not check reservations, it relies on them at settlement.
func (x *Exchange) SubmitOrder(req OrderRequest) (string, error) {
	eng, err := x.engineFor(req.Asset)
	if err != nil {
		return "", err
	}

	x.mu.RLock()
	party, ok := x.parties[req.PartyID]
	x.mu.RUnlock()
	if !ok {
		return "", domain.ErrPartyNotFound
	}

	order := &domain.Order{
		OrderID:      uuid.New().String(),
		Party:        party,
		Side:         req.Side,
		Kind:         req.Kind,
		Quantity:     req.Quantity,
		ReservedRate: req.ReservedRate,
		CreatedAt:    time.Now(),
	}
	if err := eng.Submit(order); err != nil {
		return "", err
	}
	return order.OrderID, nil
}

// CancelOrder removes a resting order that has had no fills, releasing
// its reservation back to the party. Returns false if the order is
// unknown, already removed, or was filled (even partially) in the
// meantime.
func (x *Exchange) CancelOrder(asset, orderID string) bool {
	eng, err := x.engineFor(asset)
	if err != nil {
		return false
	}
	o, ok := eng.Cancel(orderID)
	if !ok {
		return false
	}

	if o.Side == domain.OrderSideBid {
		o.Party.ReleaseCash(o.ReservedRate.Mul(decimal.NewFromInt(o.Remaining)))
	} else {
		o.Party.ReleaseAsset(asset, o.Remaining)
	}
	return true
}

// Clear runs the asset's clearing pipeline and returns the trades it
// produced.
func (x *Exchange) Clear(asset string) ([]*domain.Trade, error) {
	eng, err := x.engineFor(asset)
	if err != nil {
		return nil, err
	}
	return eng.Clear(), nil
}

// ClearAll clears every asset in stable order and returns all trades
// produced, in clearing order.
func (x *Exchange) ClearAll() []*domain.Trade {
	var out []*domain.Trade
	for _, asset := range x.Assets() {
		trades, err := x.Clear(asset)
		if err != nil {
			continue
		}
		out = append(out, trades...)
	}
	return out
}

// LastPrice returns the asset's most recent trade price, if any.
func (x *Exchange) LastPrice(asset string) (decimal.Decimal, bool) {
	eng, err := x.engineFor(asset)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return eng.LastPrice()
}

// Trades returns the asset's full trade log.
func (x *Exchange) Trades(asset string) []*domain.Trade {
	eng, err := x.engineFor(asset)
	if err != nil {
		return nil
	}
	return eng.Trades()
}

// Book exposes the asset's order book for inspection.
func (x *Exchange) Book(asset string) (*engine.Book, error) {
	eng, err := x.engineFor(asset)
	if err != nil {
		return nil, err
	}
	return eng.Book(), nil
}

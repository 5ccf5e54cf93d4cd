package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/domain"
)

var two = decimal.NewFromInt(2)

// Engine clears a single asset's order book. Clearing runs three fixed
// phases: trigger stop orders, settle market orders, settle crossed limit
// orders. The engine owns the asset's last trade price and its
// append-only trade log; both live and die with the asset.
//
// Clear is not reentrant. Engines for different assets are independent
// and may be cleared concurrently; all mutation of one asset's book and
// the ledger updates it triggers are serialized by the book lock.
type Engine struct {
	book *Book
	tick domain.Tick
	seq  *Sequencer

	lastPrice decimal.Decimal
	hasLast   bool
	trades    []*domain.Trade
}

// NewEngine creates an engine with a fresh book for the given asset.
func NewEngine(asset string, tick domain.Tick, seq *Sequencer) *Engine {
	return &Engine{
		book: NewBook(asset, seq),
		tick: tick,
		seq:  seq,
	}
}

// Book returns the engine's order book.
func (e *Engine) Book() *Book {
	return e.book
}

// LastPrice returns the price of the most recent trade, if any trade has
// happened on this asset.
func (e *Engine) LastPrice() (decimal.Decimal, bool) {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()
	return e.lastPrice, e.hasLast
}

// Trades returns the full trade log in execution order.
func (e *Engine) Trades() []*domain.Trade {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()
	out := make([]*domain.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// Clear runs the clearing pipeline to a fixed point and returns the
// trades produced by this call. Calling Clear again with no intervening
// submissions produces no further trades.
func (e *Engine) Clear() []*domain.Trade {
	e.book.mu.Lock()
	defer e.book.mu.Unlock()

	start := len(e.trades)
	e.triggerStops()
	e.settleMarketOrders()
	e.settleLimitOrders()

	out := make([]*domain.Trade, len(e.trades)-start)
	copy(out, e.trades[start:])
	return out
}

// triggerStops converts triggered stop orders into market orders. A stop
// bid triggers once the last price has fallen to or below its trigger, a
// stop ask once the last price has risen to or above it. Conversion
// keeps the original sequence number so triggered orders queue fairly
// among market orders. Without an established last price nothing can
// trigger.
func (e *Engine) triggerStops() {
	if !e.hasLast {
		return
	}

	for {
		o, ok := e.book.stopBids.Min()
		if !ok || o.Kind.Trigger.GreaterThan(e.lastPrice) {
			break
		}
		e.book.remove(o)
		o.Kind = domain.Market()
		e.book.insert(o)
	}

	for {
		o, ok := e.book.stopAsks.Min()
		if !ok || o.Kind.Trigger.LessThan(e.lastPrice) {
			break
		}
		e.book.remove(o)
		o.Kind = domain.Market()
		e.book.insert(o)
	}
}

// settleMarketOrders drains the market queues, bid side first. Each
// market order matches against the best resting limit counter-order,
// falling back to the oldest opposing market order when no limit order
// exists. Two market orders with no established last price are
// unpriceable: the phase ends and both stay resting until a later
// clearing pass has a price for them.
func (e *Engine) settleMarketOrders() {
	sides := []domain.OrderSide{domain.OrderSideBid, domain.OrderSideAsk}

	for _, side := range sides {
		for {
			var mo *domain.Order
			var ok bool
			if side == domain.OrderSideBid {
				mo, ok = e.book.OldestMarketBid()
			} else {
				mo, ok = e.book.OldestMarketAsk()
			}
			if !ok {
				break
			}

			var counter *domain.Order
			var counterIsMarket bool
			if side == domain.OrderSideBid {
				if c, found := e.book.BestLimitAsk(); found {
					counter = c
				} else if c, found := e.book.OldestMarketAsk(); found {
					counter, counterIsMarket = c, true
				}
			} else {
				if c, found := e.book.BestLimitBid(); found {
					counter = c
				} else if c, found := e.book.OldestMarketBid(); found {
					counter, counterIsMarket = c, true
				}
			}
			if counter == nil {
				break
			}

			if counterIsMarket && !e.hasLast {
				// Unpriceable: both sides are market orders and no
				// reference price exists yet. Leave everything resting.
				return
			}

			if side == domain.OrderSideBid {
				e.match(mo, counter)
			} else {
				e.match(counter, mo)
			}
		}
	}
}

// settleLimitOrders matches crossed limit orders, best bid against best
// ask, until no crossing remains.
func (e *Engine) settleLimitOrders() {
	for {
		bid, hasBid := e.book.BestLimitBid()
		ask, hasAsk := e.book.BestLimitAsk()
		if !hasBid || !hasAsk || bid.Kind.Price.LessThan(ask.Kind.Price) {
			break
		}
		e.match(bid, ask)
	}
}

// match executes one trade between a bid and an ask. The disclosed
// quantity is the smaller remaining quantity. The disclosed price is the
// single explicit price if exactly one side carries one, the mean of the
// two if both do, and the last price if neither does (both market, which
// the market phase guarantees is priced). The price is rounded to the
// exchange tick before use. Both parties are settled synchronously; a
// settlement failure means the reservation bookkeeping is corrupt and
// aborts the run.
func (e *Engine) match(bid, ask *domain.Order) {
	quantity := bid.Remaining
	if ask.Remaining < quantity {
		quantity = ask.Remaining
	}

	bidPrice, bidHas := bid.Kind.LimitPrice()
	askPrice, askHas := ask.Kind.LimitPrice()

	var price decimal.Decimal
	switch {
	case bidHas && askHas:
		price = bidPrice.Add(askPrice).Div(two)
	case bidHas:
		price = bidPrice
	case askHas:
		price = askPrice
	default:
		price = e.lastPrice
	}
	price = e.tick.Round(price)

	bid.Remaining -= quantity
	ask.Remaining -= quantity
	if bid.Remaining == 0 {
		e.book.remove(bid)
	}
	if ask.Remaining == 0 {
		e.book.remove(ask)
	}

	trade := &domain.Trade{
		TradeID:    uuid.New().String(),
		Asset:      e.book.asset,
		Price:      price,
		Quantity:   quantity,
		BidParty:   bid.Party.ID(),
		AskParty:   ask.Party.ID(),
		BidOrderID: bid.OrderID,
		AskOrderID: ask.OrderID,
		BidOrigin:  bid.Kind.Type,
		AskOrigin:  ask.Kind.Type,
		Sequence:   e.seq.Next(),
		ExecutedAt: time.Now(),
	}
	e.trades = append(e.trades, trade)
	e.lastPrice = price
	e.hasLast = true

	release := bid.ReservedRate.Mul(decimal.NewFromInt(quantity))
	if err := bid.Party.SettleBuy(e.book.asset, price, quantity, release); err != nil {
		panic(fmt.Errorf("%w: buy settlement for party %s: %v", domain.ErrInvariantViolation, bid.Party.ID(), err))
	}
	if err := ask.Party.SettleSell(e.book.asset, price, quantity); err != nil {
		panic(fmt.Errorf("%w: sell settlement for party %s: %v", domain.ErrInvariantViolation, ask.Party.ID(), err))
	}
}

// Submit validates and enqueues an order on the engine's book.
func (e *Engine) Submit(o *domain.Order) error {
	return e.book.Submit(o)
}

// Cancel removes a resting, unfilled order from the book. See Book.Cancel.
func (e *Engine) Cancel(orderID string) (*domain.Order, bool) {
	return e.book.Cancel(orderID)
}

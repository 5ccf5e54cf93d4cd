package engine

import (
	"sync"

	"github.com/google/btree"

	"github.com/mlaakso/bourse/internal/domain"
)

// limitBidLess orders the limit bid side: price descending, then sequence
// ascending. Min() returns the best bid (highest price, earliest arrival).
func limitBidLess(a, b *domain.Order) bool {
	if !a.Kind.Price.Equal(b.Kind.Price) {
		return a.Kind.Price.GreaterThan(b.Kind.Price)
	}
	return a.Sequence < b.Sequence
}

// limitAskLess orders the limit ask side: price ascending, then sequence
// ascending. Min() returns the best ask (lowest price, earliest arrival).
func limitAskLess(a, b *domain.Order) bool {
	if !a.Kind.Price.Equal(b.Kind.Price) {
		return a.Kind.Price.LessThan(b.Kind.Price)
	}
	return a.Sequence < b.Sequence
}

// stopBidLess orders stop bids by trigger ascending so Min() is the stop
// bid that triggers first as the last price falls to it.
func stopBidLess(a, b *domain.Order) bool {
	if !a.Kind.Trigger.Equal(b.Kind.Trigger) {
		return a.Kind.Trigger.LessThan(b.Kind.Trigger)
	}
	return a.Sequence < b.Sequence
}

// stopAskLess orders stop asks by trigger descending so Min() is the stop
// ask that triggers first as the last price rises to it.
func stopAskLess(a, b *domain.Order) bool {
	if !a.Kind.Trigger.Equal(b.Kind.Trigger) {
		return a.Kind.Trigger.GreaterThan(b.Kind.Trigger)
	}
	return a.Sequence < b.Sequence
}

// arrivalLess orders market queues by sequence only: plain FIFO.
func arrivalLess(a, b *domain.Order) bool {
	return a.Sequence < b.Sequence
}

// Book maintains the six order queues for a single asset:
// {limit, market, stop} × {bid, ask}. Limit and stop sides are held in
// price-time priority, market sides in arrival order. A secondary index
// by order ID supports O(log n) cancellation.
type Book struct {
	asset string
	seq   *Sequencer

	mu         sync.Mutex
	limitBids  *btree.BTreeG[*domain.Order]
	limitAsks  *btree.BTreeG[*domain.Order]
	marketBids *btree.BTreeG[*domain.Order]
	marketAsks *btree.BTreeG[*domain.Order]
	stopBids   *btree.BTreeG[*domain.Order]
	stopAsks   *btree.BTreeG[*domain.Order]
	index      map[string]*domain.Order // order_id → resting order
}

// NewBook creates an empty order book for the given asset. Sequence
// numbers come from the shared exchange-wide Sequencer.
func NewBook(asset string, seq *Sequencer) *Book {
	const degree = 32
	return &Book{
		asset:      asset,
		seq:        seq,
		limitBids:  btree.NewG(degree, limitBidLess),
		limitAsks:  btree.NewG(degree, limitAskLess),
		marketBids: btree.NewG(degree, arrivalLess),
		marketAsks: btree.NewG(degree, arrivalLess),
		stopBids:   btree.NewG(degree, stopBidLess),
		stopAsks:   btree.NewG(degree, stopAskLess),
		index:      make(map[string]*domain.Order),
	}
}

// Asset returns the asset this book belongs to.
func (b *Book) Asset() string {
	return b.asset
}

// Submit validates an order, stamps the next global sequence number on
// it, and appends it to the queue matching its kind and side. The order
// is rejected before entering the book if malformed.
func (b *Book) Submit(o *domain.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o.Sequence = b.seq.Next()
	o.Remaining = o.Quantity
	b.insert(o)
	return nil
}

// Cancel removes a resting order if, and only if, its remaining quantity
// is unchanged since submission (no fills). Returns the order and true
// on success so the caller can release the reservation, or false if the
// order is unknown or was concurrently (partially) filled.
func (b *Book) Cancel(orderID string) (*domain.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[orderID]
	if !ok {
		return nil, false
	}
	if o.Remaining != o.Quantity {
		// Partially filled since the caller looked it up; the caller
		// must re-check current state.
		return nil, false
	}
	b.remove(o)
	return o, true
}

// insert places the order in the queue for its current kind and side and
// records it in the index. Caller must hold the lock.
func (b *Book) insert(o *domain.Order) {
	b.queueFor(o).ReplaceOrInsert(o)
	b.index[o.OrderID] = o
}

// remove deletes the order from its queue and the index. Caller must
// hold the lock.
func (b *Book) remove(o *domain.Order) {
	b.queueFor(o).Delete(o)
	delete(b.index, o.OrderID)
}

// queueFor maps an order's kind and side to its queue. The mapping
// follows the order's current kind: a triggered stop that was converted
// to a market order lives in the market queue.
func (b *Book) queueFor(o *domain.Order) *btree.BTreeG[*domain.Order] {
	switch o.Kind.Type {
	case domain.OrderKindLimit:
		if o.Side == domain.OrderSideBid {
			return b.limitBids
		}
		return b.limitAsks
	case domain.OrderKindMarket:
		if o.Side == domain.OrderSideBid {
			return b.marketBids
		}
		return b.marketAsks
	default:
		if o.Side == domain.OrderSideBid {
			return b.stopBids
		}
		return b.stopAsks
	}
}

// BestLimitBid returns the limit bid with the highest price, earliest
// sequence on ties.
func (b *Book) BestLimitBid() (*domain.Order, bool) {
	return b.limitBids.Min()
}

// BestLimitAsk returns the limit ask with the lowest price, earliest
// sequence on ties.
func (b *Book) BestLimitAsk() (*domain.Order, bool) {
	return b.limitAsks.Min()
}

// OldestMarketBid returns the earliest-submitted market bid.
func (b *Book) OldestMarketBid() (*domain.Order, bool) {
	return b.marketBids.Min()
}

// OldestMarketAsk returns the earliest-submitted market ask.
func (b *Book) OldestMarketAsk() (*domain.Order, bool) {
	return b.marketAsks.Min()
}

// Count returns the number of resting orders in the queue for the given
// kind and side.
func (b *Book) Count(kind domain.OrderKindType, side domain.OrderSide) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queueFor(&domain.Order{Kind: domain.OrderKind{Type: kind}, Side: side}).Len()
}

// Quantity sums the remaining quantity resting in the queue for the
// given kind and side.
func (b *Book) Quantity(kind domain.OrderKindType, side domain.OrderSide) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	b.queueFor(&domain.Order{Kind: domain.OrderKind{Type: kind}, Side: side}).Ascend(func(o *domain.Order) bool {
		total += o.Remaining
		return true
	})
	return total
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKindType discriminates the order kind variants.
type OrderKindType string

const (
	OrderKindLimit  OrderKindType = "limit"
	OrderKindMarket OrderKindType = "market"
	OrderKindStop   OrderKindType = "stop"
)

// OrderSide indicates whether an order is a bid (buy) or ask (sell).
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)

// OrderKind is a tagged variant: Limit carries a price, Stop carries a
// trigger price, Market carries neither.
type OrderKind struct {
	Type    OrderKindType
	Price   decimal.Decimal // limit orders only
	Trigger decimal.Decimal // stop orders only
}

// Limit builds a limit order kind at the given price.
func Limit(price decimal.Decimal) OrderKind {
	return OrderKind{Type: OrderKindLimit, Price: price}
}

// Market builds a market order kind.
func Market() OrderKind {
	return OrderKind{Type: OrderKindMarket}
}

// Stop builds a stop order kind with the given trigger price.
func Stop(trigger decimal.Decimal) OrderKind {
	return OrderKind{Type: OrderKindStop, Trigger: trigger}
}

// LimitPrice returns the explicit price an order of this kind discloses
// to the matching engine, and whether one exists. Only limit orders
// disclose a price; a stop order's trigger is not an execution price.
func (k OrderKind) LimitPrice() (decimal.Decimal, bool) {
	if k.Type == OrderKindLimit {
		return k.Price, true
	}
	return decimal.Decimal{}, false
}

// Order represents a bid or ask resting on, or submitted to, an order book.
type Order struct {
	OrderID   string
	Party     Party
	Side      OrderSide
	Kind      OrderKind
	Quantity  int64 // quantity at submission
	Remaining int64
	// ReservedRate is the per-unit cash rate reserved at placement.
	// Set for bids only; settlement and cancellation release the
	// reservation at this rate, never at the trade price.
	ReservedRate decimal.Decimal
	Sequence     uint64
	CreatedAt    time.Time
}

// Validate checks the submission-time invariants: positive quantity,
// a positive price on limit orders, a positive trigger on stop orders,
// and no price on market orders.
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if o.Side != OrderSideBid && o.Side != OrderSideAsk {
		return ErrInvalidOrder
	}
	switch o.Kind.Type {
	case OrderKindLimit:
		if !o.Kind.Price.IsPositive() || !o.Kind.Trigger.IsZero() {
			return ErrInvalidOrder
		}
	case OrderKindMarket:
		if !o.Kind.Price.IsZero() || !o.Kind.Trigger.IsZero() {
			return ErrInvalidOrder
		}
	case OrderKindStop:
		if !o.Kind.Trigger.IsPositive() || !o.Kind.Price.IsZero() {
			return ErrInvalidOrder
		}
	default:
		return ErrInvalidOrder
	}
	return nil
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a matched execution between a bid and an ask order.
// Trades are immutable once created.
type Trade struct {
	TradeID    string
	Asset      string
	Price      decimal.Decimal
	Quantity   int64
	BidParty   string
	AskParty   string
	BidOrderID string
	AskOrderID string
	BidOrigin  OrderKindType // queue the bid was matched from
	AskOrigin  OrderKindType
	Sequence   uint64
	ExecutedAt time.Time
}

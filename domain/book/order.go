package book

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// Order is one resting order. Identity (ID, Symbol, Side, Price, Seq) is
// fixed at insertion; only Qty changes while the order rests.
//
// The intrusive next/prev links and the level back-pointer are owned by the
// PriceLevel the order rests in. They are the only representation of FIFO
// position; a nil level marks a handle whose order has already left the book.
type Order struct {
	ID     uint64
	Symbol string
	Price  int64
	Qty    int64
	Seq    uint64

	Side Side

	next  *Order
	prev  *Order
	level *PriceLevel
}

// Next returns the order behind this one at the same price, oldest first.
func (o *Order) Next() *Order {
	return o.next
}

// Resting reports whether the order is still linked into a price level.
func (o *Order) Resting() bool {
	return o.level != nil
}

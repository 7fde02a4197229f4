package book

import "time"

type EventType uint8

const (
	EventOrderAdded EventType = iota
	EventOrderCancelled
	EventOrderModified
)

func (t EventType) String() string {
	switch t {
	case EventOrderAdded:
		return "order_added"
	case EventOrderCancelled:
		return "order_cancelled"
	case EventOrderModified:
		return "order_modified"
	default:
		return "unknown"
	}
}

// Event describes one applied mutation. It is emitted synchronously after
// the book's state has changed, while the book lock is still held, so sinks
// observe events in exactly the order mutations were applied.
type Event struct {
	Type    EventType `json:"type"`
	Symbol  string    `json:"symbol"`
	OrderID uint64    `json:"order_id"`
	Side    Side      `json:"side"`
	Price   int64     `json:"price"`
	Qty     int64     `json:"qty"`      // remaining after the mutation; 0 for cancels
	PrevQty int64     `json:"prev_qty"` // remaining before the mutation; 0 for adds
	Seq     uint64    `json:"seq"`      // the order's per-book sequence number
	Time    int64     `json:"time"`
}

// Sink receives applied events. Implementations must not call back into the
// emitting book.
type Sink interface {
	Apply(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Apply(e Event) { f(e) }

func newEvent(t EventType, o *Order, prevQty int64) Event {
	return Event{
		Type:    t,
		Symbol:  o.Symbol,
		OrderID: o.ID,
		Side:    o.Side,
		Price:   o.Price,
		Qty:     o.Qty,
		PrevQty: prevQty,
		Seq:     o.Seq,
		Time:    time.Now().UnixNano(),
	}
}

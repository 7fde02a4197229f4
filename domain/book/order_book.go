package book

import (
	"fmt"
	"sync"
	"time"

	"corebook/infra/memory"
)

// OrderBook is the externally visible unit of behavior for one instrument.
// It composes the two sides and the order index into atomic operations:
// every mutating call either applies the level change and the index change
// together, or leaves both untouched.
type OrderBook struct {
	Symbol string

	mu    sync.Mutex
	tick  int64
	bids  *BookSide
	asks  *BookSide
	index map[uint64]*Order
	pool  *memory.Pool[Order]
	sink  Sink
	seq   uint64
}

// NewOrderBook creates an empty book. tick is the minimum price increment;
// all order prices must be exact multiples of it.
func NewOrderBook(symbol string, tick int64) *OrderBook {
	pool := memory.NewPool(func() *Order { return &Order{} })
	return newOrderBook(symbol, tick, pool)
}

func newOrderBook(symbol string, tick int64, pool *memory.Pool[Order]) *OrderBook {
	if tick <= 0 {
		tick = 1
	}
	return &OrderBook{
		Symbol: symbol,
		tick:   tick,
		bids:   NewBookSide(Bid),
		asks:   NewBookSide(Ask),
		index:  make(map[uint64]*Order),
		pool:   pool,
	}
}

// SetSink installs the observer that receives every applied mutation.
// It must be called before the book takes traffic.
func (b *OrderBook) SetSink(s Sink) {
	b.mu.Lock()
	b.sink = s
	b.mu.Unlock()
}

// TickSize returns the instrument's minimum price increment.
func (b *OrderBook) TickSize() int64 {
	return b.tick
}

// NewOrder accepts a resting order. The id must not already rest in the
// book, qty must be positive, and price must be a positive multiple of the
// tick size. New orders always join the back of their price level.
func (b *OrderBook) NewOrder(id uint64, side Side, price, qty int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if qty <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	if price <= 0 || price%b.tick != 0 {
		return fmt.Errorf("%w: %d is not a positive multiple of tick %d", ErrInvalidPrice, price, b.tick)
	}
	if _, ok := b.index[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	b.seq++
	o := b.pool.Get()
	*o = Order{
		ID:     id,
		Symbol: b.Symbol,
		Price:  price,
		Qty:    qty,
		Seq:    b.seq,
		Side:   side,
	}

	b.sideOf(side).GetOrCreate(price).Enqueue(o)
	b.index[id] = o

	b.emit(newEvent(EventOrderAdded, o, 0))
	return nil
}

// CancelOrder removes a resting order. An unknown id fails with ErrNotFound;
// callers racing a prior fill or cancel should treat that as success.
func (b *OrderBook) CancelOrder(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}

	lvl := o.level
	if lvl == nil {
		panic(fmt.Sprintf("book %s: index entry %d resolves to an unlinked order", b.Symbol, id))
	}
	side := b.sideOf(o.Side)

	qty, err := lvl.Remove(o)
	if err != nil {
		panic(fmt.Sprintf("book %s: index and level disagree on order %d: %v", b.Symbol, id, err))
	}
	side.RemoveIfEmpty(lvl)
	delete(b.index, id)

	ev := Event{
		Type:    EventOrderCancelled,
		Symbol:  b.Symbol,
		OrderID: o.ID,
		Side:    o.Side,
		Price:   o.Price,
		PrevQty: qty,
		Seq:     o.Seq,
		Time:    time.Now().UnixNano(),
	}

	*o = Order{}
	b.pool.Put(o)

	b.emit(ev)
	return nil
}

// ModifyOrder reduces a resting order's quantity in place, keeping its FIFO
// position. Increases and price changes forfeit time priority and must be
// submitted as cancel + new; they are rejected here with ErrInvalidQuantity.
func (b *OrderBook) ModifyOrder(id uint64, newQty int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if newQty <= 0 || newQty >= o.Qty {
		return fmt.Errorf("%w: modify of order %d to %d (resting %d) must strictly reduce", ErrInvalidQuantity, id, newQty, o.Qty)
	}

	lvl := o.level
	if lvl == nil {
		panic(fmt.Sprintf("book %s: index entry %d resolves to an unlinked order", b.Symbol, id))
	}

	prev := o.Qty
	lvl.Reduce(o, newQty)

	b.emit(newEvent(EventOrderModified, o, prev))
	return nil
}

// BestBid returns the highest price with at least one resting buy order.
func (b *OrderBook) BestBid() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bestPrice(b.bids)
}

// BestAsk returns the lowest price with at least one resting sell order.
func (b *OrderBook) BestAsk() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bestPrice(b.asks)
}

func bestPrice(s *BookSide) (int64, bool) {
	lvl := s.Best()
	if lvl == nil {
		return 0, false
	}
	return lvl.Price, true
}

// Level is one row of a depth snapshot.
type Level struct {
	Price  int64 `json:"price"`
	Qty    int64 `json:"qty"`
	Orders int   `json:"orders"`
}

// Snapshot is a point-in-time depth view. It shares no state with the book.
type Snapshot struct {
	Symbol string  `json:"symbol"`
	Time   int64   `json:"time"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
}

// Depth returns up to max levels per side, best first. max <= 0 returns the
// whole book.
func (b *OrderBook) Depth(max int) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Symbol: b.Symbol,
		Time:   time.Now().UnixNano(),
		Bids:   b.bids.Depth(max),
		Asks:   b.asks.Depth(max),
	}
}

// Resting returns the number of orders currently in the book.
func (b *OrderBook) Resting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.index)
}

// WalkOrders visits every resting order under the book lock: bids best-first
// then asks best-first, FIFO within each level. The callback must treat
// orders as read-only and must not call back into the book.
func (b *OrderBook) WalkOrders(fn func(*Order)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	walkSide := func(s *BookSide) {
		s.Walk(func(lvl *PriceLevel) bool {
			for o := lvl.Head(); o != nil; o = o.Next() {
				fn(o)
			}
			return true
		})
	}
	walkSide(b.bids)
	walkSide(b.asks)
}

func (b *OrderBook) sideOf(s Side) *BookSide {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) emit(e Event) {
	if b.sink != nil {
		b.sink.Apply(e)
	}
}

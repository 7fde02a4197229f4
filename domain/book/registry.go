package book

import (
	"fmt"
	"sync"

	"corebook/infra/memory"
)

// Registry owns the OrderBook of every instrument, creating books lazily on
// first reference. The map lock only guards the symbol map; it is never held
// while an individual book is being mutated.
type Registry struct {
	mu    sync.RWMutex
	books map[string]*OrderBook

	defaultTick int64
	ticks       map[string]int64
	pool        *memory.Pool[Order]
	sink        Sink
}

// NewRegistry creates a registry whose books share one Order pool and, when
// set, one event sink. defaultTick applies to symbols without an explicit
// tick size.
func NewRegistry(defaultTick int64) *Registry {
	if defaultTick <= 0 {
		defaultTick = 1
	}
	return &Registry{
		books:       make(map[string]*OrderBook),
		defaultTick: defaultTick,
		ticks:       make(map[string]int64),
		pool:        memory.NewPool(func() *Order { return &Order{} }),
	}
}

// SetTick fixes the tick size used when symbol's book is first created.
// It has no effect on a book that already exists.
func (r *Registry) SetTick(symbol string, tick int64) {
	r.mu.Lock()
	r.ticks[symbol] = tick
	r.mu.Unlock()
}

// SetSink installs the sink on every existing book and every book created
// afterwards.
func (r *Registry) SetSink(s Sink) {
	r.mu.Lock()
	r.sink = s
	for _, b := range r.books {
		b.SetSink(s)
	}
	r.mu.Unlock()
}

// GetOrCreate returns symbol's book, creating it on first reference. Safe
// under concurrent first access from multiple symbols.
func (r *Registry) GetOrCreate(symbol string) *OrderBook {
	r.mu.RLock()
	b, ok := r.books[symbol]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.books[symbol]; ok {
		return b
	}

	tick := r.defaultTick
	if t, ok := r.ticks[symbol]; ok && t > 0 {
		tick = t
	}
	b = newOrderBook(symbol, tick, r.pool)
	if r.sink != nil {
		b.sink = r.sink
	}
	r.books[symbol] = b
	return b
}

// Get returns symbol's book without creating it.
func (r *Registry) Get(symbol string) (*OrderBook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[symbol]
	return b, ok
}

// Remove detaches and returns symbol's book, used for instrument delisting.
func (r *Registry) Remove(symbol string) (*OrderBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: book %s", ErrNotFound, symbol)
	}
	delete(r.books, symbol)
	return b, nil
}

// Symbols returns the symbols with a live book, in map order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.books))
	for sym := range r.books {
		out = append(out, sym)
	}
	return out
}

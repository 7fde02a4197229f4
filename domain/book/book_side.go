package book

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// BookSide holds the price levels of one side, ordered best-price-first:
// descending for bids, ascending for asks. The backing red-black tree gives
// O(log L) lookup, insertion, and deletion regardless of depth, and its
// leftmost node is always the best level.
type BookSide struct {
	side   Side
	levels *rbt.Tree[int64, *PriceLevel]
}

func NewBookSide(side Side) *BookSide {
	cmp := func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	if side == Bid {
		asc := cmp
		cmp = func(a, b int64) int { return asc(b, a) }
	}
	return &BookSide{
		side:   side,
		levels: rbt.NewWith[int64, *PriceLevel](cmp),
	}
}

// GetOrCreate returns the level at price, inserting an empty one at its
// sorted position if the price is new to this side.
func (s *BookSide) GetOrCreate(price int64) *PriceLevel {
	if lvl, ok := s.levels.Get(price); ok {
		return lvl
	}
	lvl := &PriceLevel{Price: price}
	s.levels.Put(price, lvl)
	return lvl
}

// Best returns the most aggressive non-empty level, or nil when the side
// has no resting orders. Empty levels are removed eagerly, so the first
// level is always the best price with orders.
func (s *BookSide) Best() *PriceLevel {
	n := s.levels.Left()
	if n == nil {
		return nil
	}
	return n.Value
}

// RemoveIfEmpty drops lvl from the side once its last order has left.
// It runs inside the same book operation as the order removal, so a level
// is never observably empty.
func (s *BookSide) RemoveIfEmpty(lvl *PriceLevel) {
	if lvl.Empty() {
		s.levels.Remove(lvl.Price)
	}
}

// Walk visits levels best-first until fn returns false.
func (s *BookSide) Walk(fn func(*PriceLevel) bool) {
	it := s.levels.Iterator()
	for it.Next() {
		if !fn(it.Value()) {
			return
		}
	}
}

// Depth returns up to max (price, aggregate quantity, order count) rows,
// best first. max <= 0 means all levels.
func (s *BookSide) Depth(max int) []Level {
	if max <= 0 {
		max = s.levels.Size()
	}
	out := make([]Level, 0, max)
	s.Walk(func(lvl *PriceLevel) bool {
		out = append(out, Level{
			Price:  lvl.Price,
			Qty:    lvl.TotalQty,
			Orders: lvl.Count,
		})
		return len(out) < max
	})
	return out
}

// Len returns the number of distinct price levels.
func (s *BookSide) Len() int {
	return s.levels.Size()
}

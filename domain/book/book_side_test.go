package book

import "testing"

func depthPrices(s *BookSide) []int64 {
	var prices []int64
	s.Walk(func(lvl *PriceLevel) bool {
		prices = append(prices, lvl.Price)
		return true
	})
	return prices
}

func TestBookSideBidOrdering(t *testing.T) {
	s := NewBookSide(Bid)
	for _, p := range []int64{100, 105, 95, 101} {
		s.GetOrCreate(p).Enqueue(&Order{ID: uint64(p), Price: p, Qty: 1, Side: Bid})
	}

	want := []int64{105, 101, 100, 95}
	got := depthPrices(s)
	if len(got) != len(want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("levels = %v, want %v", got, want)
		}
	}
	if s.Best().Price != 105 {
		t.Fatalf("best bid = %d, want 105", s.Best().Price)
	}
}

func TestBookSideAskOrdering(t *testing.T) {
	s := NewBookSide(Ask)
	for _, p := range []int64{100, 105, 95, 101} {
		s.GetOrCreate(p).Enqueue(&Order{ID: uint64(p), Price: p, Qty: 1, Side: Ask})
	}

	want := []int64{95, 100, 101, 105}
	got := depthPrices(s)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("levels = %v, want %v", got, want)
		}
	}
	if s.Best().Price != 95 {
		t.Fatalf("best ask = %d, want 95", s.Best().Price)
	}
}

func TestBookSideGetOrCreateReuses(t *testing.T) {
	s := NewBookSide(Bid)
	a := s.GetOrCreate(100)
	b := s.GetOrCreate(100)
	if a != b {
		t.Fatal("same price must resolve to the same level")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

func TestBookSideRemoveIfEmpty(t *testing.T) {
	s := NewBookSide(Ask)
	lvl := s.GetOrCreate(100)
	o := &Order{ID: 1, Price: 100, Qty: 1}
	lvl.Enqueue(o)

	s.RemoveIfEmpty(lvl)
	if s.Len() != 1 {
		t.Fatal("non-empty level must not be removed")
	}

	if _, err := lvl.Remove(o); err != nil {
		t.Fatalf("remove: %v", err)
	}
	s.RemoveIfEmpty(lvl)
	if s.Len() != 0 || s.Best() != nil {
		t.Fatal("empty level must be dropped from the side")
	}
}

func TestBookSideDepthLimit(t *testing.T) {
	s := NewBookSide(Bid)
	for p := int64(1); p <= 10; p++ {
		s.GetOrCreate(p * 10).Enqueue(&Order{ID: uint64(p), Price: p * 10, Qty: p})
	}

	rows := s.Depth(3)
	if len(rows) != 3 {
		t.Fatalf("depth rows = %d, want 3", len(rows))
	}
	if rows[0].Price != 100 || rows[1].Price != 90 || rows[2].Price != 80 {
		t.Fatalf("depth = %v, want best-first 100,90,80", rows)
	}

	all := s.Depth(0)
	if len(all) != 10 {
		t.Fatalf("full depth rows = %d, want 10", len(all))
	}
}

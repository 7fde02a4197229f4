package sequence

import (
	"sync"
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := New(0)
	if s.Current() != 0 {
		t.Fatalf("current = %d, want 0", s.Current())
	}
	if got := s.Next(); got != 1 {
		t.Fatalf("first = %d, want 1", got)
	}
	if got := s.Next(); got != 2 {
		t.Fatalf("second = %d, want 2", got)
	}
	if s.Current() != 2 {
		t.Fatalf("current = %d, want 2", s.Current())
	}
}

func TestSequencerResume(t *testing.T) {
	s := New(100)
	if got := s.Next(); got != 101 {
		t.Fatalf("first after resume = %d, want 101", got)
	}

	s.Reset(500)
	if got := s.Next(); got != 501 {
		t.Fatalf("first after reset = %d, want 501", got)
	}
}

func TestSequencerConcurrentUnique(t *testing.T) {
	s := New(0)
	const goroutines, perG = 8, 1000

	out := make([][]uint64, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				out[g] = append(out[g], s.Next())
			}
		}(g)
	}
	wg.Wait()

	seen := make(map[uint64]bool, goroutines*perG)
	for _, seqs := range out {
		for _, v := range seqs {
			if seen[v] {
				t.Fatalf("sequence %d issued twice", v)
			}
			seen[v] = true
		}
	}
	if s.Current() != goroutines*perG {
		t.Fatalf("current = %d, want %d", s.Current(), goroutines*perG)
	}
}

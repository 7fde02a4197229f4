// Package snapshot persists and restores the registry's resting orders.
// Orders are dumped in book walk order (bids best-first then asks, FIFO
// within a level), so re-inserting them in file order reproduces both the
// price ordering and the time priority of every level.
package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	Symbol string
	ID     uint64
	Side   int
	Price  int64
	Qty    int64
}

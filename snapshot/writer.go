package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"corebook/domain/book"
)

const fileName = "snapshot.bin"

type Writer struct {
	Dir string
}

// Write dumps every book in the registry. seq is the global event sequence
// the snapshot covers; the WAL can be truncated up to it afterwards.
func (w *Writer) Write(seq uint64, reg *book.Registry) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, 1024),
	}

	for _, sym := range reg.Symbols() {
		b, ok := reg.Get(sym)
		if !ok {
			continue
		}
		b.WalkOrders(func(o *book.Order) {
			s.Orders = append(s.Orders, OrderEntry{
				Symbol: o.Symbol,
				ID:     o.ID,
				Side:   int(o.Side),
				Price:  o.Price,
				Qty:    o.Qty,
			})
		})
	}

	// Write to a temp file and rename so a crash never leaves a torn
	// snapshot behind.
	tmp, err := os.CreateTemp(w.Dir, fileName+".tmp-*")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(w.Dir, fileName))
}

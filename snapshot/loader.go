package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"corebook/domain/book"
)

// Load restores the registry from the snapshot in dir, returning the event
// sequence the snapshot covers. A missing snapshot is not an error; the WAL
// replay starts from zero.
func Load(dir string, reg *book.Registry) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		b := reg.GetOrCreate(e.Symbol)
		if err := b.NewOrder(e.ID, book.Side(e.Side), e.Price, e.Qty); err != nil {
			return 0, err
		}
	}

	return s.Seq, nil
}

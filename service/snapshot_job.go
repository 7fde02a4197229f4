package service

import (
	"time"

	"corebook/snapshot"
)

// Truncatable is the subset of the outbox the snapshot job garbage-collects.
type Truncatable interface {
	TruncateAckedUpTo(seq uint64) error
}

// StartSnapshotJob periodically dumps the registry, then truncates the WAL
// below the snapshotted sequence and drops acknowledged outbox records.
func (s *BookService) StartSnapshotJob(dir string, interval time.Duration, outbox Truncatable) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for range t.C {
			seq := s.seqGen.Current()

			if err := w.Write(seq, s.reg); err != nil {
				s.logger.Error().Err(err).Msg("snapshot write failed")
				continue
			}

			// Truncation reads the current segment pointer, which Append
			// swaps on rotation; take the write lock around it.
			s.mu.Lock()
			_ = s.wal.TruncateBefore(seq)
			s.mu.Unlock()
			if outbox != nil {
				_ = outbox.TruncateAckedUpTo(seq)
			}

			s.logger.Debug().Uint64("seq", seq).Msg("snapshot written")
		}
	}()
}

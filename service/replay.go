package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"corebook/domain/book"
	"corebook/infra/sequence"
	"corebook/infra/wal"
)

// ReplayFromWAL rebuilds registry state from the entry WAL. It must run
// before the service accepts traffic.
//
// Records at or below afterSeq (already covered by a loaded snapshot) are
// skipped. Domain rejections during replay are logged and skipped, not
// fatal: a rejected command was WAL'd as intent and re-fails the same way.
func ReplayFromWAL(
	dir string,
	afterSeq uint64,
	reg *book.Registry,
	seqGen *sequence.Sequencer,
	logger zerolog.Logger,
) error {
	replayed := 0
	lastSeq, err := wal.Replay(dir, func(rec *wal.Record) error {
		if rec.Seq <= afterSeq {
			return nil
		}

		if err := applyRecord(reg, rec); err != nil {
			if book.IsRecoverable(err) {
				logger.Debug().Err(err).Uint64("seq", rec.Seq).Msg("replay: command re-rejected")
				return nil
			}
			return err
		}
		replayed++
		return nil
	})
	if err != nil {
		return err
	}

	if lastSeq < afterSeq {
		lastSeq = afterSeq
	}
	seqGen.Reset(lastSeq)

	logger.Info().
		Uint64("last_seq", lastSeq).
		Int("applied", replayed).
		Msg("wal replay completed")
	return nil
}

func applyRecord(reg *book.Registry, rec *wal.Record) error {
	parts := strings.Split(string(rec.Data), "|")

	switch rec.Type {
	case wal.RecordPlace:
		if len(parts) != 5 {
			return fmt.Errorf("wal: invalid place payload %q", rec.Data)
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return err
		}
		side, err := strconv.Atoi(parts[2])
		if err != nil {
			return err
		}
		price, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return err
		}
		return reg.GetOrCreate(parts[0]).NewOrder(id, book.Side(side), price, qty)

	case wal.RecordCancel:
		if len(parts) != 2 {
			return fmt.Errorf("wal: invalid cancel payload %q", rec.Data)
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return err
		}
		return reg.GetOrCreate(parts[0]).CancelOrder(id)

	case wal.RecordModify:
		if len(parts) != 3 {
			return fmt.Errorf("wal: invalid modify payload %q", rec.Data)
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return err
		}
		return reg.GetOrCreate(parts[0]).ModifyOrder(id, qty)

	default:
		return fmt.Errorf("wal: unknown record type %d", rec.Type)
	}
}

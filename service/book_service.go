package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"corebook/domain/book"
	"corebook/infra/codec"
	"corebook/infra/metrics"
	"corebook/infra/sequence"
	"corebook/infra/wal"
)

// EventStore is where applied events are staged for broadcast. The pebble
// outbox implements it; tests swap in an in-memory fake.
type EventStore interface {
	Append(seq uint64, payload []byte) error
}

// BookService is the only write entry point into the system. Every accepted
// command is WAL'd before it is applied, and every applied mutation is
// staged in the event store by the registry sink before the command returns.
//
// mu serializes sequence assignment, the WAL append, and the domain apply.
// Commands arrive concurrently (one per HTTP request); without this lock two
// in-flight commands could land in the log out of sequence order, which
// replay treats as corruption. Queries never take it.
type BookService struct {
	reg    *book.Registry
	seqGen *sequence.Sequencer
	wal    *wal.WAL
	events EventStore
	ser    codec.Serializer
	logger zerolog.Logger

	mu sync.Mutex
}

// New wires all dependencies and installs the event sink on the registry.
// The registry must already be restored (snapshot load + WAL replay):
// installing the sink is the point after which mutations start producing
// outbox events.
func New(
	reg *book.Registry,
	w *wal.WAL,
	events EventStore,
	seqGen *sequence.Sequencer,
	ser codec.Serializer,
	logger zerolog.Logger,
) *BookService {
	s := &BookService{
		reg:    reg,
		seqGen: seqGen,
		wal:    w,
		events: events,
		ser:    ser,
		logger: logger,
	}
	reg.SetSink(book.SinkFunc(s.onEvent))

	// Books restored from snapshot and WAL were filled before the sink
	// existed; bring the gauge up to what they actually hold.
	for _, sym := range reg.Symbols() {
		if b, ok := reg.Get(sym); ok {
			metrics.RestingOrders.WithLabelValues(sym).Set(float64(b.Resting()))
		}
	}
	return s
}

// Registry exposes the registry for read paths and jobs.
func (s *BookService) Registry() *book.Registry {
	return s.reg
}

// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────

func (s *BookService) NewOrder(symbol string, id uint64, side book.Side, price, qty int64) error {
	start := time.Now()
	defer func() { metrics.ApplyLatency.Observe(time.Since(start).Seconds()) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	rec := wal.NewRecord(wal.RecordPlace, seq,
		[]byte(fmt.Sprintf("%s|%d|%d|%d|%d", symbol, id, side, price, qty)))
	if err := s.wal.Append(rec); err != nil {
		return fmt.Errorf("wal append: %w", err)
	}

	if err := s.reg.GetOrCreate(symbol).NewOrder(id, side, price, qty); err != nil {
		s.reject(err)
		return err
	}
	return nil
}

func (s *BookService) CancelOrder(symbol string, id uint64) error {
	start := time.Now()
	defer func() { metrics.ApplyLatency.Observe(time.Since(start).Seconds()) }()

	b, ok := s.reg.Get(symbol)
	if !ok {
		return fmt.Errorf("%w: book %s", book.ErrNotFound, symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	rec := wal.NewRecord(wal.RecordCancel, seq,
		[]byte(fmt.Sprintf("%s|%d", symbol, id)))
	if err := s.wal.Append(rec); err != nil {
		return fmt.Errorf("wal append: %w", err)
	}

	if err := b.CancelOrder(id); err != nil {
		s.reject(err)
		return err
	}
	return nil
}

func (s *BookService) ModifyOrder(symbol string, id uint64, newQty int64) error {
	start := time.Now()
	defer func() { metrics.ApplyLatency.Observe(time.Since(start).Seconds()) }()

	b, ok := s.reg.Get(symbol)
	if !ok {
		return fmt.Errorf("%w: book %s", book.ErrNotFound, symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seqGen.Next()
	rec := wal.NewRecord(wal.RecordModify, seq,
		[]byte(fmt.Sprintf("%s|%d|%d", symbol, id, newQty)))
	if err := s.wal.Append(rec); err != nil {
		return fmt.Errorf("wal append: %w", err)
	}

	if err := b.ModifyOrder(id, newQty); err != nil {
		s.reject(err)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────

// Read paths go through GetOrCreate: an instrument that has taken no
// orders yet reads as an empty book, not as an error. The gateway has
// already rejected unlisted symbols.

func (s *BookService) BestBid(symbol string) (int64, bool, error) {
	price, ok := s.reg.GetOrCreate(symbol).BestBid()
	return price, ok, nil
}

func (s *BookService) BestAsk(symbol string) (int64, bool, error) {
	price, ok := s.reg.GetOrCreate(symbol).BestAsk()
	return price, ok, nil
}

func (s *BookService) Depth(symbol string, levels int) (book.Snapshot, error) {
	return s.reg.GetOrCreate(symbol).Depth(levels), nil
}

// ──────────────────────────────────────────────────────────
// Event sink
// ──────────────────────────────────────────────────────────

// onEvent runs synchronously under the emitting book's lock: it must stage
// the event and return without touching the book.
func (s *BookService) onEvent(e book.Event) {
	switch e.Type {
	case book.EventOrderAdded:
		metrics.OrdersAcceptedTotal.Inc()
		metrics.RestingOrders.WithLabelValues(e.Symbol).Inc()
	case book.EventOrderCancelled:
		metrics.OrdersCancelledTotal.Inc()
		metrics.RestingOrders.WithLabelValues(e.Symbol).Dec()
	case book.EventOrderModified:
		metrics.OrdersModifiedTotal.Inc()
	}

	payload, err := s.ser.Encode(e)
	if err != nil {
		s.logger.Error().Err(err).Uint64("order_id", e.OrderID).Msg("event encode failed")
		return
	}
	if err := s.events.Append(s.seqGen.Next(), payload); err != nil {
		s.logger.Error().Err(err).Uint64("order_id", e.OrderID).Msg("outbox append failed")
	}
}

func (s *BookService) reject(err error) {
	metrics.OrderRejectsTotal.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, book.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, book.ErrNotFound):
		return "not_found"
	case errors.Is(err, book.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, book.ErrInvalidPrice):
		return "invalid_price"
	default:
		return "other"
	}
}

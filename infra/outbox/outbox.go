// Package outbox is the durable staging area between the book and the
// event broadcast. Every applied mutation is written here keyed by its
// global sequence; the broadcaster drains pending records to Kafka and
// marks them acknowledged, so a crash between apply and publish never
// loses or duplicates an event stream position.
package outbox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Record is one staged event. Payload is the serialized book event.
type Record struct {
	Seq         uint64
	State       State
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][lastAttempt:8][payload]
func encodeValue(state State, lastAttempt int64, payload []byte) []byte {
	buf := make([]byte, 1+8+len(payload))
	buf[0] = byte(state)
	binary.BigEndian.PutUint64(buf[1:9], uint64(lastAttempt))
	copy(buf[9:], payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (Record, error) {
	if len(b) < 9 {
		return Record{}, errors.New("outbox: truncated record")
	}
	payload := make([]byte, len(b)-9)
	copy(payload, b[9:])
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[1:9])),
		Payload:     payload,
	}, nil
}

type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false,
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Append stages a new event under its sequence. Called synchronously from
// the write path, so it uses a durable write.
func (o *Outbox) Append(seq uint64, payload []byte) error {
	return o.db.Set(keyFor(seq), encodeValue(StateNew, 0, payload), pebble.Sync)
}

// MarkSent records a publish attempt before the message leaves the process.
func (o *Outbox) MarkSent(rec Record) error {
	return o.db.Set(keyFor(rec.Seq), encodeValue(StateSent, time.Now().UnixNano(), rec.Payload), pebble.Sync)
}

// MarkAcked records broker acknowledgement.
func (o *Outbox) MarkAcked(rec Record) error {
	return o.db.Set(keyFor(rec.Seq), encodeValue(StateAcked, time.Now().UnixNano(), rec.Payload), pebble.Sync)
}

// Get returns the record staged at seq.
func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeValue(seq, val)
}

// ScanPending visits every record not yet acknowledged, in sequence order.
// SENT records are included: a SENT without a matching ACK means the
// process died mid-publish and the event must be retried.
func (o *Outbox) ScanPending(fn func(Record) error) error {
	return o.scan(func(rec Record) error {
		if rec.State == StateAcked {
			return nil
		}
		return fn(rec)
	})
}

// TruncateAckedUpTo deletes acknowledged records at or below seq.
func (o *Outbox) TruncateAckedUpTo(seq uint64) error {
	return o.scan(func(rec Record) error {
		if rec.State == StateAcked && rec.Seq <= seq {
			return o.db.Delete(keyFor(rec.Seq), pebble.NoSync)
		}
		return nil
	})
}

func (o *Outbox) scan(fn func(Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("event/"),
		UpperBound: []byte("event/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeValue(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(b), "event/%d", &seq)
	return seq, err
}

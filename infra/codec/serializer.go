// Package codec serializes applied book events for the outbox and the
// Kafka stream.
package codec

import (
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"corebook/domain/book"
)

type Serializer interface {
	Encode(book.Event) ([]byte, error)
	Decode([]byte) (book.Event, error)
}

// ---------- JSON ----------

type JSONSerializer struct{}

func (JSONSerializer) Encode(e book.Event) ([]byte, error) {
	return json.Marshal(e)
}

func (JSONSerializer) Decode(b []byte) (book.Event, error) {
	var e book.Event
	err := json.Unmarshal(b, &e)
	return e, err
}

// ---------- Protobuf ----------

// ProtoSerializer carries events as a protobuf Struct envelope. Numeric
// fields ride as doubles on the wire, so sequence values must stay below
// 2^53; the sequencer starts at zero and this is not reachable in practice.
type ProtoSerializer struct{}

func (ProtoSerializer) Encode(e book.Event) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"type":     int64(e.Type),
		"symbol":   e.Symbol,
		"order_id": e.OrderID,
		"side":     int64(e.Side),
		"price":    e.Price,
		"qty":      e.Qty,
		"prev_qty": e.PrevQty,
		"seq":      e.Seq,
		"time":     e.Time,
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (ProtoSerializer) Decode(b []byte) (book.Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return book.Event{}, err
	}
	m := s.AsMap()
	return book.Event{
		Type:    book.EventType(asInt(m["type"])),
		Symbol:  asString(m["symbol"]),
		OrderID: uint64(asInt(m["order_id"])),
		Side:    book.Side(asInt(m["side"])),
		Price:   asInt(m["price"]),
		Qty:     asInt(m["qty"]),
		PrevQty: asInt(m["prev_qty"]),
		Seq:     uint64(asInt(m["seq"])),
		Time:    asInt(m["time"]),
	}, nil
}

func asInt(v any) int64 {
	f, _ := v.(float64)
	return int64(f)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// Package rest is the HTTP gateway over the book service. Prices cross
// this boundary as decimal strings and are converted to exact integer
// ticks before the domain ever sees them; nothing inside the books works
// in floating point.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"corebook/config"
	"corebook/domain/book"
	"corebook/service"
)

type Server struct {
	mux      *http.ServeMux
	svc      *service.BookService
	cfg      config.Config
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func New(svc *service.BookService, cfg config.Config, logger zerolog.Logger, metricsHandler http.Handler) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		svc:    svc,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.mux.HandleFunc("POST /orders", s.handleNewOrder)
	s.mux.HandleFunc("DELETE /orders/{symbol}/{id}", s.handleCancel)
	s.mux.HandleFunc("POST /orders/{symbol}/{id}/reduce", s.handleReduce)
	s.mux.HandleFunc("GET /book/{symbol}/depth", s.handleDepth)
	s.mux.HandleFunc("GET /book/{symbol}/best", s.handleBest)
	s.mux.HandleFunc("GET /ws/depth/{symbol}", s.handleDepthFeed)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// -------------------- Commands --------------------

type newOrderRequest struct {
	Symbol string `json:"symbol"`
	ID     uint64 `json:"id"`
	Side   string `json:"side"`
	Price  string `json:"price"`
	Qty    int64  `json:"qty"`
}

func (s *Server) handleNewOrder(w http.ResponseWriter, r *http.Request) {
	var req newOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	in, ok := s.cfg.Instrument(req.Symbol)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown symbol %q", req.Symbol))
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ticks, err := toTicks(in, req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.NewOrder(req.Symbol, req.ID, side, ticks, req.Qty); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "ok", "id": req.ID})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be an unsigned integer")
		return
	}

	if err := s.svc.CancelOrder(symbol, id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
}

type reduceRequest struct {
	Qty int64 `json:"qty"`
}

func (s *Server) handleReduce(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be an unsigned integer")
		return
	}
	var req reduceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.svc.ModifyOrder(symbol, id, req.Qty); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id, "qty": req.Qty})
}

// -------------------- Queries --------------------

type levelPayload struct {
	Price  string `json:"price"`
	Qty    int64  `json:"qty"`
	Orders int    `json:"orders"`
}

type depthPayload struct {
	Symbol string         `json:"symbol"`
	Time   int64          `json:"time"`
	Bids   []levelPayload `json:"bids"`
	Asks   []levelPayload `json:"asks"`
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	in, ok := s.cfg.Instrument(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown symbol %q", symbol))
		return
	}

	levels := 10
	if v := r.URL.Query().Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "levels must be a non-negative integer")
			return
		}
		levels = n
	}

	snap, err := s.svc.Depth(symbol, levels)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDepthPayload(in, snap))
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	in, ok := s.cfg.Instrument(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown symbol %q", symbol))
		return
	}

	resp := map[string]any{"symbol": symbol}
	if bid, ok, err := s.svc.BestBid(symbol); err == nil && ok {
		resp["bid"] = fromTicks(in, bid)
	}
	if ask, ok, err := s.svc.BestAsk(symbol); err == nil && ok {
		resp["ask"] = fromTicks(in, ask)
	}
	writeJSON(w, http.StatusOK, resp)
}

// -------------------- Helpers --------------------

func toDepthPayload(in config.Instrument, snap book.Snapshot) depthPayload {
	conv := func(ls []book.Level) []levelPayload {
		out := make([]levelPayload, len(ls))
		for i, l := range ls {
			out[i] = levelPayload{Price: fromTicks(in, l.Price), Qty: l.Qty, Orders: l.Orders}
		}
		return out
	}
	return depthPayload{
		Symbol: snap.Symbol,
		Time:   snap.Time,
		Bids:   conv(snap.Bids),
		Asks:   conv(snap.Asks),
	}
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "buy", "bid":
		return book.Bid, nil
	case "sell", "ask":
		return book.Ask, nil
	default:
		return 0, fmt.Errorf("side must be buy or sell, got %q", s)
	}
}

// toTicks converts a decimal price string to integer ticks at the
// instrument's scale. A price that does not land exactly on the scale is
// rejected here, before the book's own tick check.
func toTicks(in config.Instrument, price string) (int64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a decimal number", price)
	}
	scaled := d.Shift(in.PriceScale)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("price %s has more than %d decimal places", price, in.PriceScale)
	}
	return scaled.IntPart(), nil
}

func fromTicks(in config.Instrument, ticks int64) string {
	return decimal.New(ticks, -in.PriceScale).StringFixed(in.PriceScale)
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, book.ErrDuplicateID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, book.ErrInvalidQuantity), errors.Is(err, book.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

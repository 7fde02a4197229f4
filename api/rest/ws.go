package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultFeedInterval = 500 * time.Millisecond
	minFeedInterval     = 100 * time.Millisecond
	writeWait           = 5 * time.Second
)

// handleDepthFeed upgrades the connection and streams depth snapshots for
// one symbol until the client goes away.
func (s *Server) handleDepthFeed(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	in, ok := s.cfg.Instrument(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown symbol %q", symbol))
		return
	}

	interval := defaultFeedInterval
	if v := r.URL.Query().Get("interval_ms"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			interval = max(time.Duration(ms)*time.Millisecond, minFeedInterval)
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// The server's per-request read deadline survives the hijack; clear it
	// so an idle feed is not torn down.
	_ = conn.SetReadDeadline(time.Time{})

	// Drain client frames so close/ping handling keeps working.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap, err := s.svc.Depth(symbol, s.cfg.Kafka.DepthLevels)
			if err != nil {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toDepthPayload(in, snap)); err != nil {
				return
			}
		}
	}
}

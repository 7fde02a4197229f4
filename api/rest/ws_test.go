package rest

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestDepthFeed(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/orders", `{"symbol":"BTC-USD","id":1,"side":"buy","price":"100.00","qty":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/depth/BTC-USD?interval_ms=100"
	conn, wsResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if wsResp != nil {
		wsResp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var depth depthPayload
	require.NoError(t, conn.ReadJSON(&depth))
	require.Equal(t, "BTC-USD", depth.Symbol)
	require.Len(t, depth.Bids, 1)
	require.Equal(t, "100.00", depth.Bids[0].Price)
}

func TestDepthFeedUnknownSymbol(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/depth/NOPE"
	conn, wsResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, wsResp)
	require.Equal(t, http.StatusNotFound, wsResp.StatusCode)
	wsResp.Body.Close()
}

package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(conn, "admin")
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(EventSeatUpdate, map[string]int{"number": 5})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event string         `json:"event"`
			Data  map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventSeatUpdate, msg.Event)
		assert.Equal(t, 5, msg.Data["number"])
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_NilIsSafe(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Broadcast(EventOrderCreate, nil) })
}

func TestHub_SlowClientDoesNotBlockBroadcast(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	// never reads, so its socket buffers fill up
	dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	big := strings.Repeat("x", 1<<20)
	start := time.Now()
	for i := 0; i < 100; i++ {
		h.Broadcast(EventOrderUpdate, big)
	}
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	h := New()
	srv := newTestServer(t, h)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

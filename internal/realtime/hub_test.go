package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lunarcms/lunar/internal/rbac"
)

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := newConnection(hub, conn, rbac.Identity{ID: "user-1"})
		hub.register(client)

		client.close()
		// An event dispatched during teardown must be dropped, not sent
		// on the closed channel.
		client.enqueue(Message{Event: EventPong})
		client.close()
		close(done)
	}))
	t.Cleanup(server.Close)

	ws, _, err := websocket.DefaultDialer.Dial(strings.Replace(server.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("connection teardown did not complete")
	}
}

func TestHubCloseUnregistersConnections(t *testing.T) {
	hub := NewHub(nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := newConnection(hub, conn, rbac.Identity{ID: "user-2"})
		hub.register(client)

		go client.writeLoop()
		client.readLoop()
	}))
	t.Cleanup(server.Close)

	ws, _, err := websocket.DefaultDialer.Dial(strings.Replace(server.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.conns) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Close()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.conns) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/service"
)

func startManager(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	manager := NewManager()
	manager.Start(ctx)
	return manager, serveViews(t, manager, nil)
}

// serveViews upgrades every request into a view of manager. pumpDone, when
// set, receives once per view after its read loop returns.
func serveViews(t *testing.T, manager *Manager, pumpDone chan<- struct{}) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(r.URL.Query().Get("session"), conn)
		if !manager.Add(client) {
			conn.Close()
			return
		}
		go func() {
			client.ReadPump(manager)
			if pumpDone != nil {
				pumpDone <- struct{}{}
			}
		}()
		go client.WritePump()
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestNotifySessionReachesOnlyThatSession(t *testing.T) {
	manager, server := startManager(t)
	alice := dial(t, server, "alice")
	bob := dial(t, server, "bob")

	assert.Eventually(t, func() bool { return manager.Connected("") == 2 }, 2*time.Second, 10*time.Millisecond)

	manager.NotifySession("alice", service.ViewEvent{Type: service.EventCartChanged, ItemCount: 3})
	msg := readMessage(t, alice)
	assert.Equal(t, service.EventCartChanged, msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["item_count"])

	manager.Broadcast(service.ViewEvent{Type: service.EventCatalogChanged, ProductID: "p1"})
	msg = readMessage(t, bob)
	assert.Equal(t, service.EventCatalogChanged, msg.Type, "bob never saw alice's cart event")
	msg = readMessage(t, alice)
	assert.Equal(t, service.EventCatalogChanged, msg.Type)
}

func TestPingIsAnswered(t *testing.T) {
	manager, server := startManager(t)
	conn := dial(t, server, "s1")
	assert.Eventually(t, func() bool { return manager.Connected("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, MessageTypePong, readMessage(t, conn).Type)
}

func TestClosedViewIsUnregistered(t *testing.T) {
	manager, server := startManager(t)
	conn := dial(t, server, "s1")
	assert.Eventually(t, func() bool { return manager.Connected("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return manager.Connected("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyNeverBlocks(t *testing.T) {
	// Not started: nothing drains the queues.
	manager := NewManager()

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueBuffer*2; i++ {
			manager.NotifySession("s1", service.ViewEvent{Type: service.EventCartChanged})
			manager.Broadcast(service.ViewEvent{Type: service.EventCatalogChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier blocked on a full queue")
	}
}

func TestHandleIncomingIgnoresUnknownMessages(t *testing.T) {
	assert.Nil(t, handleIncoming([]byte(`{"type":"subscribe"}`)))
	assert.Nil(t, handleIncoming([]byte(`not json`)))
}

func TestStoppedManagerReleasesViews(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := NewManager()
	manager.Start(ctx)
	pumpDone := make(chan struct{}, 1)
	server := serveViews(t, manager, pumpDone)

	dial(t, server, "s1")
	assert.Eventually(t, func() bool { return manager.Connected("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-pumpDone:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop stayed blocked after the manager stopped")
	}

	added := make(chan bool, 1)
	go func() { added <- manager.Add(NewClient("s2", nil)) }()
	select {
	case ok := <-added:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Add blocked on a stopped manager")
	}
}

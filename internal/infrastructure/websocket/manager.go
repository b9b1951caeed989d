package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/domain/service"
	"storefront/pkg/logger"
)

const (
	sendBuffer   = 32
	queueBuffer  = 256
	writeTimeout = 10 * time.Second
	maxReadBytes = 4096
)

// Client is one open view (browser tab) of a session.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	// done is closed instead of Send, so late senders never panic.
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(sessionID string, conn *websocket.Conn) *Client {
	return &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

type directMessage struct {
	sessionID string
	payload   []byte
}

// Manager fans view-invalidation events out to connected views. Sending
// never blocks the caller: events for slow or absent views are dropped,
// the view re-fetches its projection on the next event anyway.
type Manager struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage
	done       chan struct{}
	mutex      sync.RWMutex
}

var _ service.Notifier = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, queueBuffer),
		direct:     make(chan directMessage, queueBuffer),
		done:       make(chan struct{}),
	}
}

// Start runs the manager's main loop in a goroutine until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				views, ok := m.clients[client.SessionID]
				if !ok {
					views = make(map[*Client]struct{})
					m.clients[client.SessionID] = views
				}
				views[client] = struct{}{}
				m.mutex.Unlock()
				logger.Debug("View connected: session=%s", client.SessionID)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Debug("View disconnected: session=%s", client.SessionID)

			case message := <-m.broadcast:
				for _, client := range m.snapshot("") {
					m.deliver(client, message)
				}

			case message := <-m.direct:
				for _, client := range m.snapshot(message.sessionID) {
					m.deliver(client, message.payload)
				}

			case <-ctx.Done():
				m.closeAll()
				close(m.done)
				return
			}
		}
	}()
}

// Add registers an open view. It reports false once the manager has
// stopped, in which case the caller owns the connection.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) NotifySession(sessionID string, event service.ViewEvent) {
	payload, err := encodeEvent(event)
	if err != nil {
		logger.Warn("Failed to encode view event %s: %v", event.Type, err)
		return
	}

	select {
	case m.direct <- directMessage{sessionID: sessionID, payload: payload}:
	default:
		logger.Warn("View event queue full, dropping %s for session %s", event.Type, sessionID)
	}
}

func (m *Manager) Broadcast(event service.ViewEvent) {
	payload, err := encodeEvent(event)
	if err != nil {
		logger.Warn("Failed to encode view event %s: %v", event.Type, err)
		return
	}

	select {
	case m.broadcast <- payload:
	default:
		logger.Warn("View event queue full, dropping broadcast %s", event.Type)
	}
}

// Connected counts the open views of sessionID, or of every session when
// sessionID is empty.
func (m *Manager) Connected(sessionID string) int {
	return len(m.snapshot(sessionID))
}

func (m *Manager) snapshot(sessionID string) []*Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var clients []*Client
	for id, views := range m.clients {
		if sessionID != "" && id != sessionID {
			continue
		}
		for client := range views {
			clients = append(clients, client)
		}
	}
	return clients
}

// deliver drops the view when its buffer is full.
func (m *Manager) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		logger.Warn("View of session %s is not keeping up, disconnecting", client.SessionID)
		m.remove(client)
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	views, ok := m.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := views[client]; !ok {
		return
	}
	delete(views, client)
	client.close()
	if len(views) == 0 {
		delete(m.clients, client.SessionID)
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, views := range m.clients {
		for client := range views {
			client.close()
		}
		delete(m.clients, id)
	}
}

// ReadPump consumes messages from the view until it goes away. Views
// only ever send pings.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-m.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxReadBytes)
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("View read error: session=%s error=%v", c.SessionID, err)
			}
			break
		}

		if reply := handleIncoming(message); reply != nil {
			select {
			case c.Send <- reply:
			case <-c.done:
			default:
			}
		}
	}
}

// WritePump sends queued messages to the view.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("View write error: session=%s error=%v", c.SessionID, err)
				return
			}
		case <-c.done:
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Package ws provides the push transport: a registry of live websocket
// connections addressable by channel id, with one writer goroutine per
// connection so a slow or dead peer never blocks a sender.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	ai "github.com/tabletalk-ai/tabletalk"
)

const (
	// sendBuffer is the per-connection outbound queue. A peer that falls
	// this far behind is considered dead and unregistered.
	sendBuffer = 32

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Manager is a registry of active push channels. It is safe for
// concurrent use; queries share one manager.
type Manager struct {
	mu    sync.RWMutex
	conns map[string]*connection
	log   *slog.Logger
}

type connection struct {
	id   string
	conn *websocket.Conn
	send chan string
	done chan struct{}
	once sync.Once
}

func (c *connection) stop() {
	c.once.Do(func() {
		close(c.done)
	})
}

// NewManager creates an empty channel registry.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		conns: make(map[string]*connection),
		log:   log,
	}
}

// Register adds a websocket connection to the registry and returns its
// channel id. The manager owns all writes to the connection from here on.
func (m *Manager) Register(conn *websocket.Conn) string {
	c := &connection{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan string, sendBuffer),
		done: make(chan struct{}),
	}

	m.mu.Lock()
	m.conns[c.id] = c
	m.mu.Unlock()

	go m.writeLoop(c)

	m.log.Debug("push channel registered", "channel_id", c.id)
	return c.id
}

// Unregister removes a channel and closes its connection. Safe to call
// more than once.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	c, ok := m.conns[id]
	delete(m.conns, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	c.stop()
	m.log.Debug("push channel unregistered", "channel_id", id)
}

// Len returns the number of live channels.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Send queues one text frame for the channel. It never blocks on the
// peer: an unknown id returns ai.ErrChannelNotFound, and a full buffer
// or closed channel unregisters it and returns ai.ErrChannelClosed.
func (m *Manager) Send(id, payload string) error {
	m.mu.RLock()
	c, ok := m.conns[id]
	m.mu.RUnlock()

	if !ok {
		return ai.ErrChannelNotFound
	}

	select {
	case <-c.done:
		return ai.ErrChannelClosed
	case c.send <- payload:
		return nil
	default:
		m.log.Warn("push channel buffer full, dropping connection", "channel_id", id)
		m.Unregister(id)
		return ai.ErrChannelClosed
	}
}

func (m *Manager) writeLoop(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return

		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				m.log.Debug("push channel write failed", "channel_id", c.id, "error", err)
				m.Unregister(c.id)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				m.Unregister(c.id)
				return
			}
		}
	}
}

package syncserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/inkpad/internal/errors"
	"github.com/vango-dev/inkpad/pkg/reactive"
	"github.com/vango-dev/inkpad/pkg/settings"
)

// Message types exchanged over /ws.
const (
	MessageSnapshot = "snapshot"
	MessageChange   = "change"
	MessageSet      = "set"
	MessageError    = "error"
)

// Message is a WebSocket frame in either direction.
type Message struct {
	Type     string             `json:"type"`
	Path     string             `json:"path,omitempty"`
	Value    json.RawMessage    `json:"value,omitempty"`
	Snapshot *settings.Snapshot `json:"snapshot,omitempty"`
	Code     string             `json:"code,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// client is one WebSocket connection.
type client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte

	// subMu guards sub and orders the snapshot before changes.
	subMu sync.Mutex
	sub   *reactive.Subscription

	closeOnce sync.Once
	done      chan struct{}
}

// HandleWebSocket upgrades the request and streams settings changes.
//
// The client first receives a snapshot message, then a change message for
// every change. It may send set messages, which are applied like
// PUT /api/settings/{path}.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		server: s,
		conn:   conn,
		send:   make(chan []byte, s.config.SendQueueSize),
		done:   make(chan struct{}),
	}

	// Holding subMu while subscribing and queueing the snapshot keeps the
	// snapshot first; a concurrent change waits and follows it.
	c.subMu.Lock()
	c.sub = s.editor.Watch(func(ch settings.Change) {
		value, err := json.Marshal(ch.Value)
		if err != nil {
			s.logger.Error("change encode error", "error", err)
			return
		}
		c.subMu.Lock()
		defer c.subMu.Unlock()
		c.enqueue(Message{Type: MessageChange, Path: ch.Path, Value: value})
	})
	snap := s.editor.Snapshot()
	c.enqueue(Message{Type: MessageSnapshot, Snapshot: &snap})
	c.subMu.Unlock()

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	if s.metrics != nil {
		s.metrics.ClientConnected()
	}

	go c.writeLoop()
	c.readLoop()
}

// enqueue queues msg without blocking. A full queue drops the client,
// since the change listener runs inside the setter.
func (c *client) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.logger.Error("message encode error", "error", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.server.logger.Warn("dropping slow websocket client")
		go c.close(true)
	}
}

// readLoop applies set messages until the connection closes.
func (c *client) readLoop() {
	defer c.close(false)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.server.logger.Error("read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(errorMessage(errors.New("E102").WithDetail("message").Wrap(err)))
			continue
		}

		switch msg.Type {
		case MessageSet:
			if err := c.server.editor.Apply(msg.Path, msg.Value); err != nil {
				c.enqueue(errorMessage(err))
			}
		default:
			c.server.logger.Warn("unknown message type", "type", msg.Type)
		}
	}
}

// writeLoop drains the send queue onto the connection.
func (c *client) writeLoop() {
	defer c.close(false)

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.server.logger.Error("write error", "error", err)
				return
			}
		}
	}
}

// close unsubscribes and closes the connection once.
func (c *client) close(dropped bool) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.subMu.Lock()
		c.sub.Remove()
		c.subMu.Unlock()

		c.server.clientsMu.Lock()
		delete(c.server.clients, c)
		c.server.clientsMu.Unlock()
		if c.server.metrics != nil {
			c.server.metrics.ClientDisconnected(dropped)
		}

		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
	})
}

func errorMessage(err error) Message {
	return Message{Type: MessageError, Code: errors.CodeOf(err), Error: err.Error()}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/systems/recording"
	"github.com/zeusync/climber/pkg/generic"
)

var _ recording.Sink = (*Hub)(nil)

const (
	defaultQueueSize = 64
	writeTimeout     = 5 * time.Second
)

// Frame is the message sent to feed clients for every recorded tick.
type Frame struct {
	Type     string             `json:"type"`
	Tick     uint64             `json:"tick"`
	Digest   uint64             `json:"digest"`
	Climbers []climber.Snapshot `json:"climbers"`
}

// Hub fans recorded snapshots out to websocket clients. Clients only
// listen; anything they send is discarded. A client whose queue is full is
// dropped rather than slowing the simulation down.
type Hub struct {
	upgrader websocket.Upgrader
	logger   log.Log
	buffers  *generic.Pool[*bytes.Buffer]

	mu        sync.Mutex
	clients   map[*feedClient]struct{}
	last      []byte
	queueSize int
	closed    bool
}

type HubOption func(*Hub)

// WithQueueSize sets how many frames may wait for a slow client.
func WithQueueSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

func WithHubLogger(logger log.Log) HubOption {
	return func(h *Hub) { h.logger = logger }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log.Provide(),
		buffers: generic.NewPool(
			func() *bytes.Buffer { return new(bytes.Buffer) },
			func(b *bytes.Buffer) { b.Reset() },
		),
		clients:   make(map[*feedClient]struct{}),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *feedClient) stop() {
	c.once.Do(func() { close(c.send) })
}

// Record broadcasts the snapshots of one tick.
func (h *Hub) Record(_ context.Context, tick uint64, snaps []climber.Snapshot) error {
	buf := h.buffers.Get()
	defer h.buffers.Put(buf)

	frame := Frame{Type: "tick", Tick: tick, Digest: climber.CombinedDigest(snaps), Climbers: snaps}
	if err := json.NewEncoder(buf).Encode(frame); err != nil {
		return err
	}
	data := bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n"))

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrServerClosed
	}
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow feed client", log.String("remote", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			c.stop()
		}
	}
	return nil
}

// Last returns the most recent encoded frame, or nil before the first tick.
func (h *Hub) Last() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away or the hub is closed. A new client first receives the latest frame.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, h.queueSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go h.readLoop(c)
	h.writeLoop(c)
}

func (h *Hub) readLoop(c *feedClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) writeLoop(c *feedClient) {
	defer func() {
		_ = c.conn.Close()
		h.logger.Debug("feed client disconnected", log.String("remote", c.conn.RemoteAddr().String()))
	}()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *feedClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

// Close disconnects every client. Later Record calls fail with
// ErrServerClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.stop()
	}
}

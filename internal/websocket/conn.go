package websocket

import (
	"net/http"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn wraps a gorilla connection so that the game, the idle timer and the
// dispatcher can write to it from different goroutines. Reads must come from
// a single goroutine.
type Conn struct {
	mu     sync.Mutex
	ws     *gws.Conn
	closed bool
}

// NewConn wraps ws.
func NewConn(ws *gws.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteMessage writes a raw frame.
func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// WriteJSON writes v as a JSON text frame.
func (c *Conn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// ReadMessage reads the next frame.
func (c *Conn) ReadMessage() (int, []byte, error) {
	return c.ws.ReadMessage()
}

// Close closes the connection. Calling it more than once is harmless.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}

// NewUpgrader returns an upgrader that accepts same-origin requests, requests
// without an Origin header, and requests from allowedOrigin.
func NewUpgrader(allowedOrigin string) *gws.Upgrader {
	return &gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == allowedOrigin {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

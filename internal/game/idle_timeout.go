package game

import (
	"sync"
	"time"

	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
)

// IdleTimeout closes a connection after a period without events.
type IdleTimeout struct {
	mu       sync.Mutex
	conn     model.WebSocketConn
	timeout  time.Duration
	timer    *time.Timer
	running  bool
	canceled bool
	onExpire func()
}

// NewIdleTimeout creates a new IdleTimeout for a connection.
func NewIdleTimeout(conn model.WebSocketConn, timeout time.Duration) *IdleTimeout {
	return &IdleTimeout{
		conn:    conn,
		timeout: timeout,
	}
}

// OnExpire sets a callback run after the connection is closed.
func (t *IdleTimeout) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = fn
}

// Start begins the countdown.
func (t *IdleTimeout) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = true
	t.canceled = false
	t.timer = time.AfterFunc(t.timeout, t.handleTimeout)
}

// Touch restarts the countdown. It does nothing once the timeout has fired or been canceled.
func (t *IdleTimeout) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.timer == nil {
		return
	}
	t.timer.Reset(t.timeout)
}

// Cancel stops the countdown (called when the connection closes normally).
func (t *IdleTimeout) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.canceled = true
	t.running = false
	if t.timer != nil {
		t.timer.Stop()
	}
}

// IsRunning returns whether the countdown is active.
func (t *IdleTimeout) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *IdleTimeout) handleTimeout() {
	t.mu.Lock()
	if t.canceled || !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	conn := t.conn
	onExpire := t.onExpire
	t.mu.Unlock()

	if conn != nil {
		_ = conn.WriteJSON(map[string]interface{}{
			"type":    "timeout",
			"message": "一定時間操作がなかったため切断しました",
		})
		_ = conn.Close()
	}

	if onExpire != nil {
		onExpire()
	}
}

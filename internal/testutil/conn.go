// Package testutil provides common test utilities, mocks, and helpers for testing.
package testutil

import (
	"encoding/json"
	"errors"
	"sync"
)

// textMessage mirrors gorilla/websocket's TextMessage frame type.
const textMessage = 1

var errConnClosed = errors.New("mock connection closed")

// Frame is one message written to a MockWebSocketConn.
type Frame struct {
	Type int
	Data []byte
}

// MockWebSocketConn records every frame written to it.
type MockWebSocketConn struct {
	mu     sync.Mutex
	frames []Frame
	closed bool

	// WriteErr, when set, is returned by every write.
	WriteErr error
}

// NewMockWebSocketConn creates a new MockWebSocketConn.
func NewMockWebSocketConn() *MockWebSocketConn {
	return &MockWebSocketConn{}
}

// WriteMessage records a raw frame. Writes after Close fail like a real connection.
func (m *MockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errConnClosed
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.frames = append(m.frames, Frame{Type: messageType, Data: append([]byte(nil), data...)})
	return nil
}

// WriteJSON records v encoded as a text frame.
func (m *MockWebSocketConn) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.WriteMessage(textMessage, data)
}

// Close marks the connection closed. Closing twice is not an error.
func (m *MockWebSocketConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetIsClosed reports whether Close has been called.
func (m *MockWebSocketConn) GetIsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetMessages returns the payload of every frame in write order.
func (m *MockWebSocketConn) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]byte, 0, len(m.frames))
	for _, f := range m.frames {
		out = append(out, f.Data)
	}
	return out
}

// GetLastMessageAsMap decodes the last frame, or returns nil when nothing was written.
func (m *MockWebSocketConn) GetLastMessageAsMap() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) == 0 {
		return nil
	}
	return decodeFrame(m.frames[len(m.frames)-1].Data)
}

// GetMessagesOfType decodes every frame whose "type" field equals msgType.
func (m *MockWebSocketConn) GetMessagesOfType(msgType string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]map[string]interface{}, 0)
	for _, f := range m.frames {
		if msg := decodeFrame(f.Data); msg != nil && msg["type"] == msgType {
			result = append(result, msg)
		}
	}
	return result
}

func decodeFrame(data []byte) map[string]interface{} {
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil
	}
	return msg
}

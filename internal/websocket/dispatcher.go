package websocket

import (
	"errors"

	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
)

// EventSink receives the puzzle events decoded from client frames.
type EventSink interface {
	PointerDown(x, y int)
	PointerMove(x, y int)
	PointerUp(x, y int)
	Resize(width, height int)
	Replay() error
}

// Dispatcher answers pings and routes every other frame to an EventSink.
type Dispatcher struct {
	conn model.WebSocketConn
	sink EventSink
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(conn model.WebSocketConn, sink EventSink) *Dispatcher {
	return &Dispatcher{
		conn: conn,
		sink: sink,
	}
}

// Dispatch handles one frame. Rejected frames are reported to the client
// and the error is returned; the connection stays usable.
func (d *Dispatcher) Dispatch(data []byte) error {
	msg, err := ParseMessage(data)
	if err != nil {
		d.writeError(errorCode(err), "不正なメッセージです")
		return err
	}

	switch msg.Type {
	case TypePing:
		_ = d.conn.WriteJSON(map[string]interface{}{
			"type": "pong",
		})
	case TypePointerDown:
		d.sink.PointerDown(msg.X, msg.Y)
	case TypePointerMove:
		d.sink.PointerMove(msg.X, msg.Y)
	case TypePointerUp:
		d.sink.PointerUp(msg.X, msg.Y)
	case TypeResize:
		d.sink.Resize(msg.Width, msg.Height)
	case TypeReplay:
		if err := d.sink.Replay(); err != nil {
			d.writeError("REPLAY_FAILED", "もう一度遊ぶことができません")
			return err
		}
	}

	return nil
}

func (d *Dispatcher) writeError(code, message string) {
	_ = d.conn.WriteJSON(map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownMessage):
		return "UNKNOWN_MESSAGE"
	case errors.Is(err, ErrInvalidViewport):
		return "INVALID_VIEWPORT"
	default:
		return "INVALID_MESSAGE"
	}
}

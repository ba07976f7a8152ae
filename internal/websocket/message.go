// Package websocket provides WebSocket message handling utilities.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message types.
const (
	TypePing        = "ping"
	TypePointerDown = "pointerDown"
	TypePointerMove = "pointerMove"
	TypePointerUp   = "pointerUp"
	TypeResize      = "resize"
	TypeReplay      = "replay"
)

var (
	// ErrInvalidMessage is returned for a frame that is not a JSON object with a type.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrUnknownMessage is returned for a type the server does not handle.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrInvalidViewport is returned for a resize with non-positive dimensions.
	ErrInvalidViewport = errors.New("invalid viewport size")
)

// Message is one inbound client event. Coordinates are in board space.
type Message struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ParseMessage decodes and validates a client frame.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type == "" {
		return Message{}, ErrInvalidMessage
	}

	switch msg.Type {
	case TypePing, TypePointerDown, TypePointerMove, TypePointerUp, TypeReplay:
	case TypeResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return Message{}, ErrInvalidViewport
		}
	default:
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Type)
	}

	return msg, nil
}

// IsPingMessage checks if a frame is a ping without processing it.
func IsPingMessage(data []byte) bool {
	msg, err := ParseMessage(data)
	return err == nil && msg.Type == TypePing
}

// Package model provides data models for the application.
package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status constants for player state
const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
	StatusSolved  = "solved"
)

// WebSocketConn defines the interface for WebSocket connections.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

// Player represents a player in the system.
// Fields that change after creation are guarded by Lock.
type Player struct {
	mu sync.Mutex

	ID        string    // UUID
	SessionID string    // Session ID (Cookie)
	JoinedAt  time.Time // When the session was created
	Status    string    // Current status

	// Puzzle fields
	ImageKey     string    // Storage key of the puzzle image
	ImageURL     string    // Public URL the client draws pieces from
	Solves       int       // Number of completed solves
	LastSolvedAt time.Time // Time of the most recent solve

	// WebSocket connection
	Conn WebSocketConn // WebSocket connection for pointer events and render updates
}

// NewPlayer creates a new Player with default values.
func NewPlayer() *Player {
	return &Player{
		ID:       uuid.New().String(),
		Status:   StatusWaiting,
		JoinedAt: time.Now(),
	}
}

// Lock acquires the player's lock. Every game for the player holds it while
// reading or changing the player, so a replaced game and its successor never
// touch the player at the same time.
func (p *Player) Lock() { p.mu.Lock() }

// Unlock releases the player's lock.
func (p *Player) Unlock() { p.mu.Unlock() }

// validTransitions defines allowed status transitions.
var validTransitions = map[string][]string{
	StatusWaiting: {StatusPlaying},
	StatusPlaying: {StatusSolved, StatusWaiting},
	StatusSolved:  {StatusPlaying, StatusWaiting},
}

// CanTransitionTo checks if the player can transition to the given status.
func (p *Player) CanTransitionTo(status string) bool {
	allowedStatuses, ok := validTransitions[p.Status]
	if !ok {
		return false
	}

	for _, allowed := range allowedStatuses {
		if allowed == status {
			return true
		}
	}
	return false
}

// AssignPuzzle records the image the player is solving.
func (p *Player) AssignPuzzle(imageKey, imageURL string) {
	p.ImageKey = imageKey
	p.ImageURL = imageURL
}

// RecordSolve increments the solve count and returns the new total.
func (p *Player) RecordSolve() int {
	p.Solves++
	p.LastSolvedAt = time.Now()
	return p.Solves
}

// ResetToWaiting clears the puzzle state. Solve history is kept.
func (p *Player) ResetToWaiting() {
	p.Status = StatusWaiting
	p.ImageKey = ""
	p.ImageURL = ""
}

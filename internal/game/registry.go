package game

import "sync"

// Registry maps session IDs to running games.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*Game
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]*Game),
	}
}

// Put stores g for sessionID, replacing any previous game.
func (r *Registry) Put(sessionID string, g *Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[sessionID] = g
}

// Get returns the game for sessionID.
func (r *Registry) Get(sessionID string) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[sessionID]
	return g, ok
}

// Delete removes the game for sessionID.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, sessionID)
}

// Count returns the number of games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

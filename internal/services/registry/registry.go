// Package registry tracks the one live session each player may have.
package registry

import (
	"sync"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Entry is anything the registry can hold
type Entry interface {
	ID() model.SessionID
}

// Factory creates a new session for a player
type Factory[S Entry] func(playerID model.PlayerID) (S, error)

// Registry maps each player to at most one live session.
// It is a keyed store only; it never iterates its entries for callers.
type Registry[S Entry] struct {
	mu       sync.Mutex
	factory  Factory[S]
	sessions map[model.PlayerID]S
}

// New creates an empty Registry that builds sessions with factory
func New[S Entry](factory Factory[S]) *Registry[S] {
	return &Registry[S]{
		factory:  factory,
		sessions: make(map[model.PlayerID]S),
	}
}

// Start creates and stores a session for playerID, failing with
// ErrAlreadyActive if one is already live. The check and the insert happen
// under the same lock.
func (r *Registry[S]) Start(playerID model.PlayerID) (S, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero S
	if _, ok := r.sessions[playerID]; ok {
		return zero, model.ErrAlreadyActive
	}

	s, err := r.factory(playerID)
	if err != nil {
		return zero, err
	}
	r.sessions[playerID] = s
	return s, nil
}

// Get returns the live session for playerID, or the zero value if none
func (r *Registry[S]) Get(playerID model.PlayerID) S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[playerID]
}

// End removes the player's session. Removing an absent session is a no-op.
func (r *Registry[S]) End(playerID model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, playerID)
}

// EndSession removes the player's session only if it is still sessionID,
// so a stale expiry can never evict a newer game.
func (r *Registry[S]) EndSession(playerID model.PlayerID, sessionID model.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok || s.ID() != sessionID {
		return false
	}
	delete(r.sessions, playerID)
	return true
}

// Len returns the number of live sessions
func (r *Registry[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

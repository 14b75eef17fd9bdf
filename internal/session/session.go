// Package session tracks live SSH play sessions for `trustsnake serve`.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrFull is returned when the concurrent session cap is reached.
var ErrFull = errors.New("session limit reached")

// Info describes one SSH session.
type Info struct {
	ID      string
	User    string
	Remote  string
	Started time.Time
}

// Registry tracks active sessions.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	max      int
	sessions map[string]Info
}

// NewRegistry creates a registry admitting at most limit sessions.
// limit <= 0 means unlimited.
func NewRegistry(limit int) *Registry {
	return &Registry{
		max:      limit,
		sessions: make(map[string]Info),
	}
}

// Acquire registers a new session and returns it with a release function.
// Release is safe to call multiple times.
func (r *Registry) Acquire(user, remote string) (Info, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.sessions) >= r.max {
		return Info{}, nil, fmt.Errorf("session: %d active: %w", len(r.sessions), ErrFull)
	}

	info := Info{
		ID:      uuid.NewString(),
		User:    user,
		Remote:  remote,
		Started: time.Now(),
	}
	r.sessions[info.ID] = info

	var once sync.Once
	release := func() {
		once.Do(func() { r.unregister(info.ID) })
	}
	return info, release, nil
}

func (r *Registry) unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *Registry) Get(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// List returns the active sessions, oldest first.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

package roomsync

import (
	"slices"
	"sync"

	"github.com/JC-comp/karaoke/internal/domain"
)

// State is the replicated room: a pure container holding only values
// previously emitted by the server. It carries no transport or timer
// concerns.
type State struct {
	mu   sync.RWMutex
	room domain.Room
}

// Room returns a copy of the current snapshot; the playlist is cloned
// so callers can never mutate replicated state.
func (s *State) Room() domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room := s.room
	room.Playlist = slices.Clone(room.Playlist)
	return room
}

// Head returns the now-playing item, if any.
func (s *State) Head() (domain.PlaylistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.room.Playlist) == 0 {
		return domain.PlaylistItem{}, false
	}
	return s.room.Playlist[0], true
}

func (s *State) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room.IsPlaying
}

// apply replaces every field with the server's snapshot. Full-state
// replace keeps out-of-order arrivals self-healing: the next update
// always wins whole.
func (s *State) apply(room domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
}

// reset clears the replica, used before every (re)join so stale state
// never outlives its subscription.
func (s *State) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = domain.Room{}
}

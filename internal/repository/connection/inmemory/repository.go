package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/repository/connection"
)

// repo tracks which websocket connections are subscribed to which
// resource key (a room id or a job id). One conn subscribes to at most
// one key at a time; re-joining moves it.
type repo struct {
	conns map[*websocket.Conn]string
	keys  map[string]map[*websocket.Conn]struct{}
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[*websocket.Conn]string),
		keys:  make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (r *repo) Add(conn *websocket.Conn, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[conn]; ok {
		if prev == key {
			return connection.ErrAlreadyExists
		}
		r.removeLocked(conn, prev)
	}

	r.conns[conn] = key
	if r.keys[key] == nil {
		r.keys[key] = make(map[*websocket.Conn]struct{})
	}
	r.keys[key][conn] = struct{}{}

	return nil
}

func (r *repo) Remove(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	r.removeLocked(conn, key)

	return key, nil
}

func (r *repo) removeLocked(conn *websocket.Conn, key string) {
	delete(r.conns, conn)
	if set := r.keys[key]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.keys, key)
		}
	}
}

func (r *repo) GetConns(key string) []*websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(r.keys[key]))
	for conn := range r.keys[key] {
		conns = append(conns, conn)
	}

	return conns
}

func (r *repo) GetKey(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.conns[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return key, nil
}

func (r *repo) Count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.keys[key])
}

package roomsync

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// commandTimeout bounds how long a command promise can stay open: if
// no acknowledgment arrives the promise resolves silently and the next
// authoritative update is trusted instead.
const commandTimeout = 5 * time.Second

type pendingEntry struct {
	done  chan struct{}
	timer clockwork.Timer
}

// pendingTable maps correlation ids to single-shot completion handles.
// Entries are removed on both the ack and the timeout path, so the
// table never grows beyond the commands in flight.
type pendingTable struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]*pendingEntry
}

func newPendingTable(clock clockwork.Clock) *pendingTable {
	return &pendingTable{
		clock:   clock,
		entries: make(map[string]*pendingEntry),
	}
}

// add registers a command and returns its promise. The returned
// channel is closed on acknowledgment or after the timeout, whichever
// comes first; it never reports an error.
func (t *pendingTable) add(requestId string) <-chan struct{} {
	entry := &pendingEntry{done: make(chan struct{})}
	entry.timer = t.clock.AfterFunc(commandTimeout, func() {
		t.resolve(requestId)
	})

	t.mu.Lock()
	t.entries[requestId] = entry
	t.mu.Unlock()

	return entry.done
}

// resolve settles the command if it is still pending; unknown ids are
// a no-op so a late ack after timeout is harmless.
func (t *pendingTable) resolve(requestId string) {
	t.mu.Lock()
	entry, ok := t.entries[requestId]
	if ok {
		delete(t.entries, requestId)
	}
	t.mu.Unlock()

	if ok {
		entry.timer.Stop()
		close(entry.done)
	}
}

// drain settles everything, used on teardown so abandoned commands
// never leave a caller blocked.
func (t *pendingTable) drain() {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[string]*pendingEntry)
	t.mu.Unlock()

	for _, entry := range entries {
		entry.timer.Stop()
		close(entry.done)
	}
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

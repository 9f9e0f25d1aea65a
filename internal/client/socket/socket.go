package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/pkg/wsrouter"
)

// State of the logical channel. One Manager owns one session at a
// time; a session is torn down and recreated when the subscribed
// resource key changes.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateJoined     State = "joined"
	StateRetrying   State = "retrying"
	StateClosed     State = "closed"
)

const (
	defaultRetryDelay  = 3 * time.Second
	defaultRejoinDelay = 3 * time.Second
)

var ErrNotConnected = errors.New("channel is not connected")

// Handler receives the raw payload of a server-pushed event.
type Handler func(payload json.RawMessage)

type Config struct {
	// URL is the websocket endpoint of one namespace,
	// e.g. ws://host/ws/room.
	URL string
	// RetryDelay is the pause before a full reconnect after a
	// transport-level failure. Defaults to 3s.
	RetryDelay time.Duration
	// RejoinDelay is the pause before re-issuing the join handshake
	// after a resource-level error. The physical connection is kept.
	// Defaults to 3s.
	RejoinDelay time.Duration
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Manager keeps one logical subscription alive across connection
// drops. It dials, joins, dispatches pushed events to subscribed
// handlers and schedules reconnect/re-join cycles. At most one retry
// timer is pending at any moment.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	dial func(url string) (*websocket.Conn, error)

	preJoin func()
	onError func(message string)

	mu          sync.Mutex
	handlers    map[string]Handler
	conn        *websocket.Conn
	resourceKey string
	state       State
	retryTimer  clockwork.Timer
	generation  int
}

func NewManager(cfg *Config, logger *slog.Logger) *Manager {
	c := *cfg
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.RejoinDelay == 0 {
		c.RejoinDelay = defaultRejoinDelay
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}

	return &Manager{
		cfg:    c,
		logger: logger,
		clock:  c.Clock,
		dial: func(url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			return conn, err
		},
		handlers: make(map[string]Handler),
		state:    StateIdle,
	}
}

// OnPreJoin registers the callback invoked right before every join,
// letting the owner clear stale replicated state. Must be set before
// Connect.
func (m *Manager) OnPreJoin(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preJoin = f
}

// OnError registers the callback every surfaced transport or resource
// error is reported to. Must be set before Connect.
func (m *Manager) OnError(f func(message string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = f
}

// Subscribe registers a handler for a server-pushed event. Must be
// called before Connect.
func (m *Manager) Subscribe(event string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = handler
}

// Connect opens a session joined to resourceKey. Connecting while a
// session for a different key is live tears the old session down
// first; the state arrives asynchronously through subscribed handlers.
func (m *Manager) Connect(resourceKey string) {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.cancelTimerLocked()
	m.resourceKey = resourceKey
	m.generation++
	m.mu.Unlock()

	go m.connect()
}

func (m *Manager) connect() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	generation := m.generation
	m.mu.Unlock()

	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		m.logger.Debug("connection error", "error", err)
		m.surfaceError("connection error: " + err.Error())
		m.scheduleRetry()
		return
	}

	m.mu.Lock()
	if m.state == StateClosed || generation != m.generation {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.state = StateJoined
	m.mu.Unlock()

	m.join()

	go m.readLoop(conn, generation)
}

// join runs the logical handshake: clear stale state, then subscribe.
func (m *Manager) join() {
	m.mu.Lock()
	preJoin := m.preJoin
	key := m.resourceKey
	m.mu.Unlock()

	if preJoin != nil {
		preJoin()
	}
	if err := m.Emit("join", key); err != nil {
		m.logger.Debug("failed to emit join", "error", err)
	}

	m.mu.Lock()
	if m.state == StateRetrying && m.conn != nil {
		m.state = StateJoined
	}
	m.mu.Unlock()
}

func (m *Manager) readLoop(conn *websocket.Conn, generation int) {
	for {
		var msg wsrouter.Message
		if err := conn.ReadJSON(&msg); err != nil {
			m.mu.Lock()
			stale := m.state == StateClosed || generation != m.generation
			if !stale {
				m.conn = nil
			}
			m.mu.Unlock()

			if !stale {
				m.surfaceError("connection lost: " + err.Error())
				m.scheduleRetry()
			}
			return
		}

		if msg.Event == "error" {
			m.handleResourceError(msg.Payload)
			continue
		}

		m.mu.Lock()
		handler := m.handlers[msg.Event]
		m.mu.Unlock()

		if handler != nil {
			handler(msg.Payload)
		}
	}
}

// handleResourceError cycles the logical subscription only: the server
// rejected this resource, the physical channel stays open.
func (m *Manager) handleResourceError(payload json.RawMessage) {
	var errMsg domain.ErrorMessage
	if err := json.Unmarshal(payload, &errMsg); err != nil {
		errMsg.Message = string(payload)
	}
	m.surfaceError(errMsg.Message)

	if err := m.Emit("leave", m.ResourceKey()); err != nil {
		m.logger.Debug("failed to emit leave", "error", err)
	}

	m.scheduleTimer(m.cfg.RejoinDelay, m.join)
}

func (m *Manager) scheduleRetry() {
	m.scheduleTimer(m.cfg.RetryDelay, m.connect)
}

// scheduleTimer arms the single retry timer; an already pending timer
// is cancelled first so consecutive failures never compound.
func (m *Manager) scheduleTimer(delay time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateClosed {
		return
	}

	m.cancelTimerLocked()
	m.state = StateRetrying
	generation := m.generation
	m.retryTimer = m.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		stale := m.state == StateClosed || generation != m.generation
		m.mu.Unlock()
		if !stale {
			f()
		}
	})
}

func (m *Manager) cancelTimerLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

func (m *Manager) surfaceError(message string) {
	m.mu.Lock()
	onError := m.onError
	m.mu.Unlock()

	if onError != nil {
		onError(message)
	}
}

// Emit frames payload under an event name and writes it to the
// current connection.
func (m *Manager) Emit(event string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	if err := wsrouter.WriteMessage(conn, event, payload); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) ResourceKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resourceKey
}

// Unsubscribe cancels timers, drops handlers and closes the physical
// channel. Safe to call multiple times.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateClosed {
		return
	}

	m.state = StateClosed
	m.generation++
	m.cancelTimerLocked()
	m.handlers = make(map[string]Handler)
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

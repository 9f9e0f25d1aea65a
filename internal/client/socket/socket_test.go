package socket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/pkg/wsrouter"
)

func TestEmitBeforeConnect(t *testing.T) {
	m := NewManager(&Config{URL: "ws://test"}, slog.Default())
	err := m.Emit("join", "abc")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConsecutiveFailuresKeepSingleRetryTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	m := NewManager(&Config{URL: "ws://test", Clock: fc}, slog.Default())

	var mu sync.Mutex
	dials := 0
	m.dial = func(url string) (*websocket.Conn, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		return nil, errors.New("connection refused")
	}

	surfaced := 0
	m.OnError(func(message string) {
		mu.Lock()
		surfaced++
		mu.Unlock()
	})

	m.Connect("abc")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials == 1
	}, time.Second, time.Millisecond)

	// two more transport failures in the same session; each schedule
	// supersedes the pending one instead of stacking
	m.connect()
	m.connect()

	mu.Lock()
	assert.Equal(t, 3, dials)
	assert.Equal(t, 3, surfaced, "every failure is surfaced")
	mu.Unlock()
	assert.Equal(t, StateRetrying, m.State())

	fc.BlockUntil(1)
	fc.Advance(defaultRetryDelay)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials == 4
	}, time.Second, time.Millisecond, "exactly one retry must fire")

	fc.BlockUntil(1)
	mu.Lock()
	assert.Equal(t, 4, dials, "a single timer fires a single reconnect")
	mu.Unlock()
}

func TestJoinHandshakeAndRejoinCycle(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConns <- conn
	}))
	defer srv.Close()

	fc := clockwork.NewFakeClock()
	m := NewManager(&Config{
		URL:   "ws" + strings.TrimPrefix(srv.URL, "http"),
		Clock: fc,
	}, slog.Default())
	defer m.Unsubscribe()

	var mu sync.Mutex
	preJoins := 0
	var errorsSeen []string
	updates := make(chan json.RawMessage, 4)

	m.OnPreJoin(func() {
		mu.Lock()
		preJoins++
		mu.Unlock()
	})
	m.OnError(func(message string) {
		mu.Lock()
		errorsSeen = append(errorsSeen, message)
		mu.Unlock()
	})
	m.Subscribe("update", func(payload json.RawMessage) {
		updates <- payload
	})

	m.Connect("abc")

	var server *websocket.Conn
	select {
	case server = <-serverConns:
	case <-time.After(time.Second):
		t.Fatal("client never dialed")
	}
	defer server.Close()

	// handshake: the client clears state and joins the resource
	var msg wsrouter.Message
	require.NoError(t, server.ReadJSON(&msg))
	assert.Equal(t, "join", msg.Event)
	assert.Equal(t, `"abc"`, string(msg.Payload))
	mu.Lock()
	assert.Equal(t, 1, preJoins)
	mu.Unlock()

	// pushed events reach the subscribed handler
	require.NoError(t, wsrouter.WriteMessage(server, "update", map[string]any{"version": 1}))
	select {
	case payload := <-updates:
		assert.JSONEq(t, `{"version":1}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("update never dispatched")
	}

	// a resource error cycles the subscription on the same connection
	require.NoError(t, wsrouter.WriteMessage(server, "error", map[string]any{"message": "room is full"}))

	require.NoError(t, server.ReadJSON(&msg))
	assert.Equal(t, "leave", msg.Event)
	assert.Equal(t, `"abc"`, string(msg.Payload))

	mu.Lock()
	require.Len(t, errorsSeen, 1)
	assert.Equal(t, "room is full", errorsSeen[0])
	mu.Unlock()
	assert.Equal(t, StateRetrying, m.State())

	fc.BlockUntil(1)
	fc.Advance(defaultRejoinDelay)

	require.NoError(t, server.ReadJSON(&msg))
	assert.Equal(t, "join", msg.Event, "the logical subscription rejoins without redialing")
	mu.Lock()
	assert.Equal(t, 2, preJoins, "every join is preceded by a state reset")
	mu.Unlock()

	select {
	case extra := <-serverConns:
		extra.Close()
		t.Fatal("rejoin must reuse the open connection")
	default:
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	fc := clockwork.NewFakeClock()
	m := NewManager(&Config{URL: "ws://test", Clock: fc}, slog.Default())
	m.dial = func(url string) (*websocket.Conn, error) {
		return nil, errors.New("connection refused")
	}

	m.Connect("abc")
	require.Eventually(t, func() bool {
		return m.State() == StateRetrying
	}, time.Second, time.Millisecond)

	m.Unsubscribe()
	assert.Equal(t, StateClosed, m.State())
	m.Unsubscribe()
	assert.Equal(t, StateClosed, m.State())

	// a closed manager never reconnects
	m.Connect("abc")
	assert.Equal(t, StateClosed, m.State())
}

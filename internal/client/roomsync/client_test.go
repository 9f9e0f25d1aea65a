package roomsync

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/domain"
)

type emittedEvent struct {
	event   string
	payload map[string]any
}

type fakeChannel struct {
	preJoin      func()
	handlers     map[string]socket.Handler
	emits        []emittedEvent
	emitErr      error
	connectedKey string
	unsubscribed bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]socket.Handler)}
}

func (f *fakeChannel) Subscribe(event string, handler socket.Handler) {
	f.handlers[event] = handler
}

func (f *fakeChannel) OnPreJoin(fn func()) {
	f.preJoin = fn
}

func (f *fakeChannel) Connect(resourceKey string) {
	f.connectedKey = resourceKey
}

func (f *fakeChannel) Emit(event string, payload any) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.emits = append(f.emits, emittedEvent{event: event, payload: payload.(map[string]any)})
	return nil
}

func (f *fakeChannel) Unsubscribe() {
	f.unsubscribed = true
}

// pushUpdate delivers a server snapshot through the update handler.
func (f *fakeChannel) pushUpdate(t *testing.T, requestId string, room domain.Room) {
	t.Helper()
	payload, err := json.Marshal(domain.UpdateEnvelope{RequestId: requestId, Body: room})
	require.NoError(t, err)
	f.handlers["update"](payload)
}

func settled(promise <-chan struct{}) bool {
	select {
	case <-promise:
		return true
	default:
		return false
	}
}

func awaitSettled(t *testing.T, promise <-chan struct{}) {
	t.Helper()
	require.Eventually(t, func() bool {
		return settled(promise)
	}, time.Second, time.Millisecond, "promise never settled")
}

func TestApplyUpdateIsIdempotent(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	snapshot := domain.Room{
		RoomName:  "abc",
		Version:   3,
		IsPlaying: true,
		Playlist: []domain.PlaylistItem{
			{ItemId: "a", Type: domain.ItemTypeYoutube, Identifier: "vid-a"},
		},
	}
	channel.pushUpdate(t, "", snapshot)
	first := client.Room()
	channel.pushUpdate(t, "", snapshot)
	second := client.Room()

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot.Version, second.Version)
	assert.Len(t, second.Playlist, 1)
}

func TestSetPlayScenario(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	client.Connect("abc")
	assert.Equal(t, "abc", channel.connectedKey)

	channel.pushUpdate(t, "", domain.Room{
		RoomName: "abc",
		Version:  1,
		Playlist: []domain.PlaylistItem{
			{ItemId: "a", Identifier: "vid-a"},
			{ItemId: "b", Identifier: "vid-b"},
		},
	})
	assert.False(t, client.Room().IsPlaying)

	promise := client.SetPlay(true)
	require.Len(t, channel.emits, 1)
	assert.Equal(t, "setplay", channel.emits[0].event)
	assert.Equal(t, "abc", channel.emits[0].payload["room_id"])
	assert.Equal(t, true, channel.emits[0].payload["is_playing"])

	requestId, ok := channel.emits[0].payload["request_id"].(string)
	require.True(t, ok, "command must carry a generated request id")
	assert.False(t, settled(promise), "promise must stay open until the ack")

	channel.pushUpdate(t, requestId, domain.Room{
		RoomName:  "abc",
		Version:   2,
		IsPlaying: true,
		Playlist: []domain.PlaylistItem{
			{ItemId: "a", Identifier: "vid-a"},
			{ItemId: "b", Identifier: "vid-b"},
		},
	})

	awaitSettled(t, promise)
	assert.True(t, client.Room().IsPlaying)
}

func TestCommandTimeoutResolves(t *testing.T) {
	channel := newFakeChannel()
	clock := clockwork.NewFakeClock()
	client := NewClient(channel, clock, slog.Default())

	promise := client.SetPlay(true)
	assert.False(t, settled(promise))

	clock.Advance(commandTimeout - time.Millisecond)
	assert.False(t, settled(promise))

	clock.Advance(time.Millisecond)
	awaitSettled(t, promise)
	assert.Equal(t, 0, client.pending.size(), "timed out entry must be removed")
}

func TestEmitFailureStillResolvesByTimeout(t *testing.T) {
	channel := newFakeChannel()
	channel.emitErr = assert.AnError
	clock := clockwork.NewFakeClock()
	client := NewClient(channel, clock, slog.Default())

	promise := client.SetPlay(true)
	assert.False(t, settled(promise))

	clock.Advance(commandTimeout)
	awaitSettled(t, promise)
}

func TestConcurrentCommandsSettleIndependently(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	first := client.SetPlay(true)
	second := client.SetPlay(false)
	require.Len(t, channel.emits, 2)

	firstId := channel.emits[0].payload["request_id"].(string)
	secondId := channel.emits[1].payload["request_id"].(string)
	assert.NotEqual(t, firstId, secondId)

	channel.pushUpdate(t, secondId, domain.Room{Version: 2})
	awaitSettled(t, second)
	assert.False(t, settled(first), "unacked command must stay pending")

	channel.pushUpdate(t, firstId, domain.Room{Version: 3})
	awaitSettled(t, first)
}

func TestMoveToNextItem(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	// empty playlist settles immediately without a command
	promise := client.MoveToNextItem()
	assert.True(t, settled(promise))
	assert.Empty(t, channel.emits)

	channel.pushUpdate(t, "", domain.Room{
		RoomName: "abc",
		Playlist: []domain.PlaylistItem{
			{ItemId: "head"},
			{ItemId: "next"},
		},
	})

	client.MoveToNextItem()
	require.Len(t, channel.emits, 1)
	assert.Equal(t, "delete", channel.emits[0].event)
	assert.Equal(t, "head", channel.emits[0].payload["item_id"])
}

func TestPreJoinResetsReplica(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	channel.pushUpdate(t, "", domain.Room{RoomName: "abc", Version: 7})
	require.Equal(t, 7, client.Room().Version)

	channel.preJoin()
	assert.Equal(t, domain.Room{}, client.Room())
}

func TestCloseSettlesOutstandingCommands(t *testing.T) {
	channel := newFakeChannel()
	client := NewClient(channel, clockwork.NewFakeClock(), slog.Default())

	promise := client.SetPlay(true)
	client.Close()

	assert.True(t, channel.unsubscribed)
	awaitSettled(t, promise)
}

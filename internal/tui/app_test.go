package tui

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
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
	onError      func(string)
	handlers     map[string]socket.Handler
	emits        []emittedEvent
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

func (f *fakeChannel) OnError(fn func(message string)) {
	f.onError = fn
}

func (f *fakeChannel) Connect(resourceKey string) {
	f.connectedKey = resourceKey
}

func (f *fakeChannel) Emit(event string, payload any) error {
	f.emits = append(f.emits, emittedEvent{event: event, payload: payload.(map[string]any)})
	return nil
}

func (f *fakeChannel) Unsubscribe() {
	f.unsubscribed = true
}

func (f *fakeChannel) pushUpdate(t *testing.T, requestId string, room domain.Room) {
	t.Helper()
	payload, err := json.Marshal(domain.UpdateEnvelope{RequestId: requestId, Body: room})
	require.NoError(t, err)
	f.handlers["update"](payload)
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, jobId, artifactId string) (string, error) {
	return "", nil
}

func (fakeFetcher) ArtifactURL(jobId, artifactId string) string {
	return ""
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T) (*App, *fakeChannel) {
	t.Helper()
	roomCh := newFakeChannel()
	jobCh := newFakeChannel()
	app := NewApp(roomCh, jobCh, fakeFetcher{}, "Default", clockwork.NewFakeClock(), slog.Default())
	return app, roomCh
}

func TestCommandKeysBlockedWhilePending(t *testing.T) {
	app, roomCh := newTestApp(t)

	t.Log("first press issues the command")
	_, cmd := app.Update(keyMsg(" "))
	require.NotNil(t, cmd, "press must hand back a settle command")
	require.Len(t, roomCh.emits, 1)
	assert.Equal(t, "setplay", roomCh.emits[0].event)

	t.Log("repeat presses are dropped until the ack")
	_, repeat := app.Update(keyMsg(" "))
	assert.Nil(t, repeat, "repeat press must not issue")
	_, repeat = app.Update(keyMsg("n"))
	assert.Nil(t, repeat, "other command keys are blocked too")
	assert.Len(t, roomCh.emits, 1, "no extra events while pending")

	t.Log("navigation keys stay live")
	app.cursor = 0
	app.roomState.Playlist = []domain.PlaylistItem{{ItemId: "a"}, {ItemId: "b"}}
	_, _ = app.Update(keyMsg("j"))
	assert.Equal(t, 1, app.cursor)

	t.Log("the ack settles the promise and re-arms the keys")
	requestId, ok := roomCh.emits[0].payload["request_id"].(string)
	require.True(t, ok, "command must carry a request id")
	roomCh.pushUpdate(t, requestId, domain.Room{RoomName: "Default", Version: 1, IsPlaying: true})

	msg := cmd()
	require.IsType(t, commandSettledMsg{}, msg)
	_, _ = app.Update(msg)

	_, cmd = app.Update(keyMsg(" "))
	require.NotNil(t, cmd)
	require.Len(t, roomCh.emits, 2, "a settled command frees the next press")
	assert.Equal(t, "setplay", roomCh.emits[1].event)
}

func TestQuitWorksWhilePending(t *testing.T) {
	app, roomCh := newTestApp(t)

	_, cmd := app.Update(keyMsg(" "))
	require.NotNil(t, cmd)

	_, quit := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, quit, "quit is never gated")
	assert.True(t, roomCh.unsubscribed, "quit tears the room session down")
}

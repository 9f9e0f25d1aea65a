package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/internal/client/roomsync"
	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/controller"
	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/repository/connection/inmemory"
	roomRedis "github.com/JC-comp/karaoke/internal/repository/room/redis"
	jobservice "github.com/JC-comp/karaoke/internal/service/job"
	roomservice "github.com/JC-comp/karaoke/internal/service/room"
)

// TestClientServerRoundTrip runs the real sync client against the real
// server stack: client joins, issues an optimistic command, and the
// acknowledged snapshot settles the pending promise.
func TestClientServerRoundTrip(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	roomService := roomservice.NewService(
		roomRedis.NewRepo(rc, time.Hour),
		inmemory.NewRepo(),
		&roomservice.Config{ClientsLimit: 10, PlaylistLimit: 10},
		slog.Default(),
	)
	jobService := jobservice.NewService(inmemory.NewRepo(), slog.Default())
	ctrl := controller.NewController(roomService, jobService, slog.Default())
	srv := httptest.NewServer(ctrl.GetMux())
	defer srv.Close()

	manager := socket.NewManager(&socket.Config{
		URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/room",
	}, slog.Default())
	defer manager.Unsubscribe()

	updates := make(chan domain.Room, 16)
	client := roomsync.NewClient(manager, clockwork.NewRealClock(), slog.Default())
	client.OnUpdate(func(room domain.Room) {
		updates <- room
	})

	awaitUpdate := func(cond func(room domain.Room) bool) domain.Room {
		t.Helper()
		for {
			select {
			case room := <-updates:
				if cond(room) {
					return room
				}
			case <-time.After(2 * time.Second):
				t.Fatal("expected update never arrived")
			}
		}
	}

	client.Connect("abc")
	joined := awaitUpdate(func(room domain.Room) bool { return room.RoomName == "abc" })
	assert.Equal(t, 0, joined.Version)
	t.Log("client joined")

	// optimistic command settles on the server's acknowledgment
	promise := client.SetPlay(true)
	awaitUpdate(func(room domain.Room) bool { return room.IsPlaying })

	select {
	case <-promise:
	case <-time.After(2 * time.Second):
		t.Fatal("command promise never settled")
	}
	assert.True(t, client.Room().IsPlaying)
	t.Log("setplay acknowledged")

	// REST-queued items show up in the replica
	body, err := json.Marshal(map[string]any{
		"room_id":   "abc",
		"item_type": "youtube",
		"item":      map[string]any{"id": "vid-1", "title": "Song A"},
	})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/ktv/queue", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	awaitUpdate(func(room domain.Room) bool { return len(room.Playlist) == 1 })
	head, ok := roomHead(client.Room())
	require.True(t, ok)
	assert.Equal(t, "vid-1", head.Identifier)

	// finishing the song advances the queue
	next := client.MoveToNextItem()
	awaitUpdate(func(room domain.Room) bool { return len(room.Playlist) == 0 })
	select {
	case <-next:
	case <-time.After(2 * time.Second):
		t.Fatal("advance promise never settled")
	}

	client.Close()
}

func roomHead(room domain.Room) (domain.PlaylistItem, bool) {
	if len(room.Playlist) == 0 {
		return domain.PlaylistItem{}, false
	}
	return room.Playlist[0], true
}

package job

import (
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/repository/connection/inmemory"
)

func TestJoinUnknownJob(t *testing.T) {
	service := NewService(inmemory.NewRepo(), slog.Default())

	_, err := service.Join(&JoinParams{Conn: &websocket.Conn{}, JobId: "nope"})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestProgressFanout(t *testing.T) {
	service := NewService(inmemory.NewRepo(), slog.Default())

	wildcard := &websocket.Conn{}
	latest, err := service.Join(&JoinParams{Conn: wildcard, JobId: WildcardKey})
	require.NoError(t, err)
	assert.Empty(t, latest, "no jobs known yet")

	resp := service.UpdateProgress(domain.JobInfo{Jid: "j1", CreatedAt: 2, Status: domain.JobStatusRunning})
	assert.Len(t, resp.Conns, 1, "wildcard watchers see every job")

	follower := &websocket.Conn{}
	latest, err = service.Join(&JoinParams{Conn: follower, JobId: "j1"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "j1", latest[0].Jid)

	resp = service.UpdateProgress(domain.JobInfo{Jid: "j1", CreatedAt: 2, Status: domain.JobStatusCompleted})
	assert.Len(t, resp.Conns, 2)

	// wildcard replay is ordered by creation time
	service.UpdateProgress(domain.JobInfo{Jid: "j0", CreatedAt: 1})
	latest, err = service.Join(&JoinParams{Conn: &websocket.Conn{}, JobId: WildcardKey})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "j0", latest[0].Jid)
	assert.Equal(t, "j1", latest[1].Jid)

	service.Leave(follower)
	resp = service.UpdateProgress(domain.JobInfo{Jid: "j1", CreatedAt: 2})
	assert.Len(t, resp.Conns, 2, "the departed follower is no longer notified")
}

func TestRejoinSameJobIsBenign(t *testing.T) {
	service := NewService(inmemory.NewRepo(), slog.Default())
	service.UpdateProgress(domain.JobInfo{Jid: "j1", CreatedAt: 1, Status: domain.JobStatusRunning})

	conn := &websocket.Conn{}
	_, err := service.Join(&JoinParams{Conn: conn, JobId: "j1"})
	require.NoError(t, err)

	latest, err := service.Join(&JoinParams{Conn: conn, JobId: "j1"})
	require.NoError(t, err, "a second join on the same job must not fail")
	require.Len(t, latest, 1)

	resp := service.UpdateProgress(domain.JobInfo{Jid: "j1", CreatedAt: 1})
	assert.Len(t, resp.Conns, 1, "the conn is subscribed once")
}

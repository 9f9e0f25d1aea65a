package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JC-comp/karaoke/internal/repository/connection"
)

func TestRegistry(t *testing.T) {
	repo := NewRepo()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	require.NoError(t, repo.Add(conn1, "room-a"))
	require.NoError(t, repo.Add(conn2, "room-a"))
	assert.Equal(t, 2, repo.Count("room-a"))
	assert.Len(t, repo.GetConns("room-a"), 2)

	key, err := repo.GetKey(conn1)
	require.NoError(t, err)
	assert.Equal(t, "room-a", key)

	// adding under the same key again is rejected
	assert.ErrorIs(t, repo.Add(conn1, "room-a"), connection.ErrAlreadyExists)

	// re-joining a different key moves the conn
	require.NoError(t, repo.Add(conn1, "room-b"))
	assert.Equal(t, 1, repo.Count("room-a"))
	assert.Equal(t, 1, repo.Count("room-b"))

	key, err = repo.Remove(conn1)
	require.NoError(t, err)
	assert.Equal(t, "room-b", key)
	assert.Equal(t, 0, repo.Count("room-b"))

	_, err = repo.Remove(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)

	_, err = repo.GetKey(conn1)
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/repository/room"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrRoomFull             = errors.New("room is full")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
)

type iRoomRepo interface {
	InitRoom(ctx context.Context, roomId string) (bool, error)
	GetRoomState(ctx context.Context, roomId string) (room.State, error)
	UpdateIsPlaying(ctx context.Context, roomId string, isPlaying bool) error
	IncrementVersion(ctx context.Context, roomId string) (int, error)
	RemoveRoom(ctx context.Context, roomId string) error

	SetItem(ctx context.Context, params *room.SetItemParams) error
	GetItem(ctx context.Context, params *room.GetItemParams) (room.Item, error)
	GetItemIds(ctx context.Context, roomId string) ([]string, error)
	GetPlaylistLength(ctx context.Context, roomId string) (int, error)
	RemoveItem(ctx context.Context, params *room.RemoveItemParams) error
	ReorderPlaylist(ctx context.Context, params *room.ReorderPlaylistParams) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, key string) error
	Remove(conn *websocket.Conn) (string, error)
	GetConns(key string) []*websocket.Conn
	Count(key string) int
}

type Config struct {
	ClientsLimit  int
	PlaylistLimit int
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	cfg      *Config
	logger   *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s service) generateItemId() string {
	return uuid.NewString()
}

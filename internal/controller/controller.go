package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/domain"
	jobservice "github.com/JC-comp/karaoke/internal/service/job"
	"github.com/JC-comp/karaoke/internal/service/room"
	"github.com/JC-comp/karaoke/pkg/validator"
)

type iRoomService interface {
	JoinRoom(ctx context.Context, params *room.JoinRoomParams) (room.UpdateResponse, error)
	LeaveRoom(ctx context.Context, params *room.LeaveRoomParams) error
	DisconnectClient(ctx context.Context, conn *websocket.Conn) error
	SetPlaying(ctx context.Context, params *room.SetPlayingParams) (room.UpdateResponse, error)
	AddItem(ctx context.Context, params *room.AddItemParams) (room.UpdateResponse, error)
	RemoveItem(ctx context.Context, params *room.RemoveItemParams) (room.UpdateResponse, error)
	MoveItemToTop(ctx context.Context, params *room.MoveItemToTopParams) (room.UpdateResponse, error)
	MoveToItem(ctx context.Context, params *room.MoveToItemParams) (room.UpdateResponse, error)
}

type iJobService interface {
	Join(params *jobservice.JoinParams) ([]domain.JobInfo, error)
	Leave(conn *websocket.Conn)
	UpdateProgress(info domain.JobInfo) jobservice.UpdateProgressResponse
}

type controller struct {
	roomService iRoomService
	jobService  iJobService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	logger      *slog.Logger
}

func NewController(roomService iRoomService, jobService iJobService, logger *slog.Logger) *controller {
	return &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		jobService:  jobService,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
}

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

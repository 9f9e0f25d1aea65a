package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/service/room"
	"github.com/JC-comp/karaoke/pkg/wsrouter"
)

func (c controller) roomSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer c.roomService.DisconnectClient(r.Context(), conn)

	if err := c.getRoomWSRouter().ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "room conn closed", "error", err)
	}
}

func (c controller) getRoomWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("join", c.handleJoinRoom)
	mux.Handle("leave", c.handleLeaveRoom)
	mux.Handle("setplay", c.handleSetPlay)
	mux.Handle("first", c.handleFirst)
	mux.Handle("delete", c.handleDelete)
	mux.Handle("moveTo", c.handleMoveTo)

	return mux
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var roomId string
	if err := json.Unmarshal(payload, &roomId); err != nil {
		return c.sendError(conn, "room id must be a string")
	}
	if roomId == "" {
		roomId = "Default"
	}

	joinResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		Conn:   conn,
		RoomId: roomId,
	})
	if err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			return c.sendError(conn, err.Error())
		}
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.broadcastUpdate(ctx, &joinResp, domain.RequestIdJoin)

	return nil
}

func (c controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var roomId string
	if err := json.Unmarshal(payload, &roomId); err != nil {
		return c.sendError(conn, "room id must be a string")
	}

	if err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		Conn:   conn,
		RoomId: roomId,
	}); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

type SetPlayInput struct {
	RoomId    string `json:"room_id" validate:"required"`
	IsPlaying bool   `json:"is_playing"`
	RequestId string `json:"request_id" validate:"required"`
}

func (c controller) handleSetPlay(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SetPlayInput
	if err := c.decodeCommand(conn, payload, &input); err != nil {
		return nil
	}

	setPlayingResp, err := c.roomService.SetPlaying(ctx, &room.SetPlayingParams{
		IsPlaying: input.IsPlaying,
		RoomId:    input.RoomId,
	})
	if err != nil {
		return c.commandError(conn, err)
	}

	c.broadcastUpdate(ctx, &setPlayingResp, input.RequestId)

	return nil
}

type PlaylistItemInput struct {
	RoomId    string `json:"room_id" validate:"required"`
	ItemId    string `json:"item_id" validate:"required"`
	RequestId string `json:"request_id" validate:"required"`
}

func (c controller) handleFirst(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlaylistItemInput
	if err := c.decodeCommand(conn, payload, &input); err != nil {
		return nil
	}

	moveResp, err := c.roomService.MoveItemToTop(ctx, &room.MoveItemToTopParams{
		ItemId: input.ItemId,
		RoomId: input.RoomId,
	})
	if err != nil {
		return c.commandError(conn, err)
	}

	c.broadcastUpdate(ctx, &moveResp, input.RequestId)

	return nil
}

func (c controller) handleDelete(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlaylistItemInput
	if err := c.decodeCommand(conn, payload, &input); err != nil {
		return nil
	}

	removeResp, err := c.roomService.RemoveItem(ctx, &room.RemoveItemParams{
		ItemId: input.ItemId,
		RoomId: input.RoomId,
	})
	if err != nil {
		return c.commandError(conn, err)
	}

	c.broadcastUpdate(ctx, &removeResp, input.RequestId)

	return nil
}

func (c controller) handleMoveTo(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlaylistItemInput
	if err := c.decodeCommand(conn, payload, &input); err != nil {
		return nil
	}

	moveResp, err := c.roomService.MoveToItem(ctx, &room.MoveToItemParams{
		ItemId: input.ItemId,
		RoomId: input.RoomId,
	})
	if err != nil {
		return c.commandError(conn, err)
	}

	c.broadcastUpdate(ctx, &moveResp, input.RequestId)

	return nil
}

// decodeCommand unmarshals and validates a command payload, reporting
// problems to the sender as resource errors.
func (c controller) decodeCommand(conn *websocket.Conn, payload json.RawMessage, input any) error {
	if err := json.Unmarshal(payload, input); err != nil {
		c.sendError(conn, "malformed payload")
		return err
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.sendError(conn, validationErrors[0].Message)
		return errors.New(validationErrors[0].Message)
	}

	return nil
}

// commandError maps expected service errors onto the error event and
// escalates everything else.
func (c controller) commandError(conn *websocket.Conn, err error) error {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrItemNotFound),
		errors.Is(err, room.ErrRoomFull):
		return c.sendError(conn, err.Error())
	default:
		return err
	}
}

func (c controller) sendError(conn *websocket.Conn, message string) error {
	return wsrouter.WriteMessage(conn, "error", domain.ErrorMessage{Message: message})
}

func (c controller) broadcastUpdate(ctx context.Context, resp *room.UpdateResponse, requestId string) {
	envelope := domain.UpdateEnvelope{
		RequestId: requestId,
		Body:      resp.Room,
	}

	for _, conn := range resp.Conns {
		if err := wsrouter.WriteMessage(conn, "update", envelope); err != nil {
			c.logger.DebugContext(ctx, "failed to write update", "error", err)
			conn.Close()
		}
	}
}

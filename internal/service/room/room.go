package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/repository/connection"
	"github.com/JC-comp/karaoke/internal/repository/room"
)

// UpdateResponse carries the authoritative snapshot to broadcast and
// the connections subscribed to the room.
type UpdateResponse struct {
	Room  domain.Room
	Conns []*websocket.Conn
}

func (s service) getRoomSnapshot(ctx context.Context, roomId string) (domain.Room, error) {
	state, err := s.roomRepo.GetRoomState(ctx, roomId)
	if err != nil {
		if err == room.ErrRoomNotFound {
			return domain.Room{}, ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("failed to get room state: %w", err)
	}

	itemIds, err := s.roomRepo.GetItemIds(ctx, roomId)
	if err != nil {
		return domain.Room{}, fmt.Errorf("failed to get item ids: %w", err)
	}

	playlist := make([]domain.PlaylistItem, 0, len(itemIds))
	for _, itemId := range itemIds {
		item, err := s.roomRepo.GetItem(ctx, &room.GetItemParams{ItemId: itemId, RoomId: roomId})
		if err != nil {
			return domain.Room{}, fmt.Errorf("failed to get item: %w", err)
		}

		playlist = append(playlist, domain.PlaylistItem{
			ItemId:     itemId,
			Type:       domain.ItemType(item.Type),
			Identifier: item.Identifier,
			Title:      item.Title,
			Artist:     item.Artist,
		})
	}

	return domain.Room{
		RoomName:     roomId,
		Version:      state.Version,
		IsPlaying:    state.IsPlaying,
		IsVocalOn:    state.IsVocalOn,
		IsFullscreen: state.IsFullscreen,
		Volume:       state.Volume,
		Playlist:     playlist,
	}, nil
}

type JoinRoomParams struct {
	Conn   *websocket.Conn
	RoomId string
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (UpdateResponse, error) {
	if s.cfg.ClientsLimit > 0 && s.connRepo.Count(params.RoomId) >= s.cfg.ClientsLimit {
		return UpdateResponse{}, ErrRoomFull
	}

	if _, err := s.roomRepo.InitRoom(ctx, params.RoomId); err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to init room: %w", err)
	}

	// a re-join on the same key is benign, the conn stays subscribed
	if err := s.connRepo.Add(params.Conn, params.RoomId); err != nil && err != connection.ErrAlreadyExists {
		return UpdateResponse{}, fmt.Errorf("failed to add conn: %w", err)
	}

	snapshot, err := s.getRoomSnapshot(ctx, params.RoomId)
	if err != nil {
		return UpdateResponse{}, err
	}

	return UpdateResponse{
		Room:  snapshot,
		Conns: s.connRepo.GetConns(params.RoomId),
	}, nil
}

type LeaveRoomParams struct {
	Conn   *websocket.Conn
	RoomId string
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	if _, err := s.connRepo.Remove(params.Conn); err != nil {
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	return nil
}

// DisconnectClient removes a dropped connection. The last client out
// also drops the room from redis; a rejoin recreates it fresh.
func (s service) DisconnectClient(ctx context.Context, conn *websocket.Conn) error {
	roomId, err := s.connRepo.Remove(conn)
	if err != nil {
		// conn never joined, nothing to clean up
		return nil
	}

	if s.connRepo.Count(roomId) == 0 {
		if err := s.roomRepo.RemoveRoom(ctx, roomId); err != nil {
			return fmt.Errorf("failed to remove room: %w", err)
		}
	}

	return nil
}

package room

import (
	"context"
	"fmt"
	"slices"

	"github.com/JC-comp/karaoke/internal/repository/room"
)

type AddItemParams struct {
	Type       string
	Identifier string
	Title      string
	Artist     string
	RoomId     string
}

func (s service) AddItem(ctx context.Context, params *AddItemParams) (UpdateResponse, error) {
	length, err := s.roomRepo.GetPlaylistLength(ctx, params.RoomId)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to get playlist length: %w", err)
	}
	if s.cfg.PlaylistLimit > 0 && length >= s.cfg.PlaylistLimit {
		return UpdateResponse{}, ErrPlaylistLimitReached
	}

	if err := s.roomRepo.SetItem(ctx, &room.SetItemParams{
		ItemId:     s.generateItemId(),
		Type:       params.Type,
		Identifier: params.Identifier,
		Title:      params.Title,
		Artist:     params.Artist,
		RoomId:     params.RoomId,
	}); err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to set item: %w", err)
	}

	return s.finishMutation(ctx, params.RoomId)
}

type RemoveItemParams struct {
	ItemId string
	RoomId string
}

func (s service) RemoveItem(ctx context.Context, params *RemoveItemParams) (UpdateResponse, error) {
	if err := s.roomRepo.RemoveItem(ctx, &room.RemoveItemParams{
		ItemId: params.ItemId,
		RoomId: params.RoomId,
	}); err != nil {
		if err == room.ErrItemNotFound {
			return UpdateResponse{}, ErrItemNotFound
		}
		return UpdateResponse{}, fmt.Errorf("failed to remove item: %w", err)
	}

	return s.finishMutation(ctx, params.RoomId)
}

type MoveItemToTopParams struct {
	ItemId string
	RoomId string
}

// MoveItemToTop promotes the target to the head and drops the previous
// head: "play this one next, the current one is done".
func (s service) MoveItemToTop(ctx context.Context, params *MoveItemToTopParams) (UpdateResponse, error) {
	itemIds, err := s.roomRepo.GetItemIds(ctx, params.RoomId)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to get item ids: %w", err)
	}

	target := slices.Index(itemIds, params.ItemId)
	if target == -1 {
		return UpdateResponse{}, ErrItemNotFound
	}

	if target > 0 {
		reordered := make([]string, 0, len(itemIds)-1)
		reordered = append(reordered, params.ItemId)
		// skip the old head and the target itself
		reordered = append(reordered, itemIds[1:target]...)
		reordered = append(reordered, itemIds[target+1:]...)

		if err := s.roomRepo.ReorderPlaylist(ctx, &room.ReorderPlaylistParams{
			ItemIds: reordered,
			RoomId:  params.RoomId,
		}); err != nil {
			return UpdateResponse{}, fmt.Errorf("failed to reorder playlist: %w", err)
		}
	}

	return s.finishMutation(ctx, params.RoomId)
}

type MoveToItemParams struct {
	ItemId string
	RoomId string
}

// MoveToItem drops every item queued above the target so the target
// becomes the playing head.
func (s service) MoveToItem(ctx context.Context, params *MoveToItemParams) (UpdateResponse, error) {
	itemIds, err := s.roomRepo.GetItemIds(ctx, params.RoomId)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to get item ids: %w", err)
	}

	target := slices.Index(itemIds, params.ItemId)
	if target == -1 {
		return UpdateResponse{}, ErrItemNotFound
	}

	if target > 0 {
		if err := s.roomRepo.ReorderPlaylist(ctx, &room.ReorderPlaylistParams{
			ItemIds: itemIds[target:],
			RoomId:  params.RoomId,
		}); err != nil {
			return UpdateResponse{}, fmt.Errorf("failed to reorder playlist: %w", err)
		}
	}

	return s.finishMutation(ctx, params.RoomId)
}

// finishMutation bumps the room version and builds the broadcast
// response every successful mutation ends with.
func (s service) finishMutation(ctx context.Context, roomId string) (UpdateResponse, error) {
	if _, err := s.roomRepo.IncrementVersion(ctx, roomId); err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to increment version: %w", err)
	}

	snapshot, err := s.getRoomSnapshot(ctx, roomId)
	if err != nil {
		return UpdateResponse{}, err
	}

	return UpdateResponse{
		Room:  snapshot,
		Conns: s.connRepo.GetConns(roomId),
	}, nil
}

package room

import (
	"context"
	"fmt"

	"github.com/JC-comp/karaoke/internal/repository/room"
)

type SetPlayingParams struct {
	IsPlaying bool
	RoomId    string
}

func (s service) SetPlaying(ctx context.Context, params *SetPlayingParams) (UpdateResponse, error) {
	if err := s.roomRepo.UpdateIsPlaying(ctx, params.RoomId, params.IsPlaying); err != nil {
		if err == room.ErrRoomNotFound {
			return UpdateResponse{}, ErrRoomNotFound
		}
		return UpdateResponse{}, fmt.Errorf("failed to update is_playing: %w", err)
	}

	return s.finishMutation(ctx, params.RoomId)
}

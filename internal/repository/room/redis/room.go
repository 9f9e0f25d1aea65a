package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/JC-comp/karaoke/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

// InitRoom creates the room hash with default state if it does not
// exist yet. Returns whether the room was created.
func (r repo) InitRoom(ctx context.Context, roomId string) (bool, error) {
	roomKey := r.getRoomKey(roomId)
	created, err := r.rc.HSetNX(ctx, roomKey, "version", 0).Result()
	if err != nil {
		return false, err
	}

	if created {
		pipe := r.rc.TxPipeline()
		pipe.HSet(ctx, roomKey, map[string]any{
			"is_playing":    false,
			"is_vocal_on":   false,
			"is_fullscreen": true,
			"volume":        100,
		})
		pipe.Expire(ctx, roomKey, r.expireDuration)
		if err := r.executePipe(ctx, pipe); err != nil {
			return false, err
		}
	}

	return created, nil
}

func (r repo) GetRoomState(ctx context.Context, roomId string) (room.State, error) {
	var state room.State
	roomKey := r.getRoomKey(roomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return room.State{}, err
	}
	if exists == 0 {
		return room.State{}, room.ErrRoomNotFound
	}

	if err := r.rc.HGetAll(ctx, roomKey).Scan(&state); err != nil {
		return room.State{}, err
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return state, nil
}

func (r repo) UpdateIsPlaying(ctx context.Context, roomId string, isPlaying bool) error {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return err
	}
	if res == 0 {
		return room.ErrRoomNotFound
	}

	return r.rc.HSet(ctx, r.getRoomKey(roomId), "is_playing", isPlaying).Err()
}

// IncrementVersion bumps the room's version counter and returns the
// new value.
func (r repo) IncrementVersion(ctx context.Context, roomId string) (int, error) {
	version, err := r.rc.HIncrBy(ctx, r.getRoomKey(roomId), "version", 1).Result()
	if err != nil {
		return 0, err
	}

	return int(version), nil
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	itemIds, err := r.GetItemIds(ctx, roomId)
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := r.rc.TxPipeline()
	for _, itemId := range itemIds {
		pipe.Del(ctx, r.getItemKey(roomId, itemId))
	}
	pipe.Del(ctx, r.getPlaylistKey(roomId))
	pipe.Del(ctx, r.getRoomKey(roomId))

	return r.executePipe(ctx, pipe)
}

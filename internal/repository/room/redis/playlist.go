package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/JC-comp/karaoke/internal/repository/room"
)

func (r repo) getItemKey(roomId, itemId string) string {
	return "room:" + roomId + ":item:" + itemId
}

func (r repo) getPlaylistKey(roomId string) string {
	return "room:" + roomId + ":playlist"
}

func (r repo) SetItem(ctx context.Context, params *room.SetItemParams) error {
	itemKey := r.getItemKey(params.RoomId, params.ItemId)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, itemKey, room.Item{
		Type:       params.Type,
		Identifier: params.Identifier,
		Title:      params.Title,
		Artist:     params.Artist,
	})
	pipe.Expire(ctx, itemKey, r.expireDuration)
	if err := r.executePipe(ctx, pipe); err != nil {
		return err
	}

	playlistKey := r.getPlaylistKey(params.RoomId)
	if err := r.addWithIncrement(ctx, playlistKey, params.ItemId); err != nil {
		return err
	}

	return r.rc.Expire(ctx, playlistKey, r.expireDuration).Err()
}

func (r repo) GetItem(ctx context.Context, params *room.GetItemParams) (room.Item, error) {
	var item room.Item
	itemKey := r.getItemKey(params.RoomId, params.ItemId)
	if err := r.rc.HGetAll(ctx, itemKey).Scan(&item); err != nil {
		return room.Item{}, err
	}

	if item.Type == "" {
		return room.Item{}, room.ErrItemNotFound
	}

	r.rc.Expire(ctx, itemKey, r.expireDuration)

	return item, nil
}

func (r repo) GetItemIds(ctx context.Context, roomId string) ([]string, error) {
	playlistKey := r.getPlaylistKey(roomId)
	itemIds, err := r.rc.ZRange(ctx, playlistKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	r.rc.Expire(ctx, playlistKey, r.expireDuration)

	return itemIds, nil
}

func (r repo) GetPlaylistLength(ctx context.Context, roomId string) (int, error) {
	length, err := r.rc.ZCard(ctx, r.getPlaylistKey(roomId)).Result()
	if err != nil {
		return 0, err
	}

	return int(length), nil
}

func (r repo) RemoveItem(ctx context.Context, params *room.RemoveItemParams) error {
	res, err := r.rc.ZRem(ctx, r.getPlaylistKey(params.RoomId), params.ItemId).Result()
	if err != nil {
		return err
	}

	if res == 0 {
		return room.ErrItemNotFound
	}

	return r.rc.Del(ctx, r.getItemKey(params.RoomId, params.ItemId)).Err()
}

// ReorderPlaylist rewrites the playlist order to exactly ItemIds.
// Items absent from ItemIds are removed along with their hashes.
func (r repo) ReorderPlaylist(ctx context.Context, params *room.ReorderPlaylistParams) error {
	current, err := r.GetItemIds(ctx, params.RoomId)
	if err != nil {
		return err
	}

	kept := make(map[string]struct{}, len(params.ItemIds))
	for _, itemId := range params.ItemIds {
		kept[itemId] = struct{}{}
	}

	playlistKey := r.getPlaylistKey(params.RoomId)
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, playlistKey)
	for i, itemId := range params.ItemIds {
		pipe.ZAdd(ctx, playlistKey, redis.Z{Score: float64(i + 1), Member: itemId})
	}
	for _, itemId := range current {
		if _, ok := kept[itemId]; !ok {
			pipe.Del(ctx, r.getItemKey(params.RoomId, itemId))
		}
	}
	pipe.Expire(ctx, playlistKey, r.expireDuration)

	return r.executePipe(ctx, pipe)
}

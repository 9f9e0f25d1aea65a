package room

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrItemNotFound = errors.New("item not found")
)

// State holds the mutable room fields as stored in redis. Version is
// bumped on every mutation; clients treat it as opaque.
type State struct {
	IsPlaying    bool `redis:"is_playing"`
	IsVocalOn    bool `redis:"is_vocal_on"`
	IsFullscreen bool `redis:"is_fullscreen"`
	Volume       int  `redis:"volume"`
	Version      int  `redis:"version"`
}

type Item struct {
	Type       string `redis:"type"`
	Identifier string `redis:"identifier"`
	Title      string `redis:"title"`
	Artist     string `redis:"artist"`
}

type SetItemParams struct {
	ItemId     string
	Type       string
	Identifier string
	Title      string
	Artist     string
	RoomId     string
}

type GetItemParams struct {
	ItemId string
	RoomId string
}

type RemoveItemParams struct {
	ItemId string
	RoomId string
}

type ReorderPlaylistParams struct {
	ItemIds []string
	RoomId  string
}

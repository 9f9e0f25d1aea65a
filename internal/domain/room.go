package domain

// ItemType discriminates how a playlist item's identifier resolves to
// playable media.
type ItemType string

const (
	// ItemTypeYoutube identifies a raw YouTube video id.
	ItemTypeYoutube ItemType = "youtube"
	// ItemTypeSchedule identifies a conversion job id whose artifacts
	// (instrumental audio, subtitles) resolve asynchronously.
	ItemTypeSchedule ItemType = "schedule"
)

type PlaylistItem struct {
	ItemId     string   `json:"item_id"`
	Type       ItemType `json:"type"`
	Identifier string   `json:"identifier"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
}

// Room is the authoritative shared state of a karaoke session. Clients
// only ever hold values previously emitted by the server; Version is
// bumped by the server on every mutation and is opaque to clients.
type Room struct {
	RoomName     string         `json:"room_name"`
	Version      int            `json:"version"`
	IsPlaying    bool           `json:"is_playing"`
	IsVocalOn    bool           `json:"is_vocal_on"`
	IsFullscreen bool           `json:"is_fullscreen"`
	Volume       int            `json:"volume"`
	Playlist     []PlaylistItem `json:"playlist"`
}

// UpdateEnvelope carries a full room snapshot. RequestId echoes the
// command that caused the mutation, or a well-known marker ("join",
// "queue-add") for server-initiated broadcasts.
type UpdateEnvelope struct {
	RequestId string `json:"request_id"`
	Body      Room   `json:"body"`
}

// ErrorMessage is the resource-level error event pushed by the server.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Markers used as RequestId on broadcasts that no client command
// correlates with.
const (
	RequestIdJoin     = "join"
	RequestIdQueueAdd = "queue-add"
)

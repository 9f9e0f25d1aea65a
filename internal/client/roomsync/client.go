package roomsync

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JC-comp/karaoke/internal/client/socket"
	"github.com/JC-comp/karaoke/internal/domain"
)

// iChannel is the logical channel the reconciler drives; satisfied by
// *socket.Manager.
type iChannel interface {
	Subscribe(event string, handler socket.Handler)
	OnPreJoin(f func())
	Connect(resourceKey string)
	Emit(event string, payload any) error
	Unsubscribe()
}

// Client reconciles the replicated room with the server: it issues
// optimistic commands tagged with correlation ids and applies every
// authoritative snapshot pushed back. The state container itself stays
// free of transport concerns.
type Client struct {
	channel iChannel
	state   *State
	pending *pendingTable
	logger  *slog.Logger

	onUpdate func(room domain.Room)
}

func NewClient(channel iChannel, clock clockwork.Clock, logger *slog.Logger) *Client {
	c := &Client{
		channel: channel,
		state:   &State{},
		pending: newPendingTable(clock),
		logger:  logger,
	}

	channel.OnPreJoin(c.state.reset)
	channel.Subscribe("update", c.handleUpdate)

	return c
}

// OnUpdate registers a callback invoked after every applied snapshot.
// Must be set before Connect.
func (c *Client) OnUpdate(f func(room domain.Room)) {
	c.onUpdate = f
}

// Connect joins the room; state arrives asynchronously.
func (c *Client) Connect(roomKey string) {
	c.channel.Connect(roomKey)
}

func (c *Client) Room() domain.Room {
	return c.state.Room()
}

func (c *Client) handleUpdate(payload json.RawMessage) {
	var envelope domain.UpdateEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.Debug("failed to decode update", "error", err)
		return
	}

	c.state.apply(envelope.Body)
	c.pending.resolve(envelope.RequestId)

	if c.onUpdate != nil {
		c.onUpdate(envelope.Body)
	}
}

// IssueCommand emits a command with a fresh correlation id and returns
// its promise. The promise resolves when the matching acknowledgment
// arrives or after the ack window elapses; it never rejects, so a
// caller can await it without blocking on a lost ack.
func (c *Client) IssueCommand(opName string, payload map[string]any) <-chan struct{} {
	requestId := uuid.NewString()
	payload["request_id"] = requestId
	done := c.pending.add(requestId)

	if err := c.channel.Emit(opName, payload); err != nil {
		// command lost; the promise settles via the timeout path and
		// the next snapshot is ground truth
		c.logger.Debug("failed to emit command", "op", opName, "error", err)
	}

	return done
}

func (c *Client) playlistItemCommand(opName string, item domain.PlaylistItem) <-chan struct{} {
	return c.IssueCommand(opName, map[string]any{
		"room_id": c.state.Room().RoomName,
		"item_id": item.ItemId,
	})
}

func (c *Client) MoveItemToTop(item domain.PlaylistItem) <-chan struct{} {
	return c.playlistItemCommand("first", item)
}

func (c *Client) DeletePlaylistItem(item domain.PlaylistItem) <-chan struct{} {
	return c.playlistItemCommand("delete", item)
}

func (c *Client) MoveToItem(item domain.PlaylistItem) <-chan struct{} {
	return c.playlistItemCommand("moveTo", item)
}

func (c *Client) SetPlay(isPlaying bool) <-chan struct{} {
	return c.IssueCommand("setplay", map[string]any{
		"room_id":    c.state.Room().RoomName,
		"is_playing": isPlaying,
	})
}

// MoveToNextItem advances the queue by deleting the head. Re-invoking
// on an already-advanced playlist is a harmless server-side no-op.
func (c *Client) MoveToNextItem() <-chan struct{} {
	head, ok := c.state.Head()
	if !ok {
		done := make(chan struct{})
		close(done)
		return done
	}

	return c.DeletePlaylistItem(head)
}

// Close tears the subscription down and settles every outstanding
// command.
func (c *Client) Close() {
	c.channel.Unsubscribe()
	c.pending.drain()
}

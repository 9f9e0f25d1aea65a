package wsrouter

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Message is the framing shared by both directions of a channel:
// a named event plus its raw payload.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type WSRouter struct {
	routes map[string]HandlerFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(event string, handler HandlerFunc) {
	r.routes[event] = handler
}

// ServeConn reads frames until the connection fails and dispatches each
// one to its registered handler. Handler errors do not stop the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, exists := r.routes[msg.Event]
		if !exists {
			WriteMessage(conn, "error", map[string]string{"message": "unknown event: " + msg.Event})
			continue
		}

		handler(context.WithValue(ctx, eventCtxKey, msg.Event), conn, msg.Payload)
	}
}

// WriteMessage frames payload under the given event name and writes it.
func WriteMessage(conn *websocket.Conn, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return conn.WriteJSON(&Message{Event: event, Payload: raw})
}

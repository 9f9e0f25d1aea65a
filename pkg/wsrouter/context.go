package wsrouter

import "context"

type ctxKey string

const (
	eventCtxKey ctxKey = "event"
)

func GetEventFromCtx(ctx context.Context) string {
	event, _ := ctx.Value(eventCtxKey).(string)
	return event
}

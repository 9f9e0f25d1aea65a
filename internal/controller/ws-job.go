package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/JC-comp/karaoke/internal/domain"
	jobservice "github.com/JC-comp/karaoke/internal/service/job"
	"github.com/JC-comp/karaoke/pkg/wsrouter"
)

func (c controller) jobSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer c.jobService.Leave(conn)

	mux := wsrouter.New()
	mux.Handle("join", c.handleJoinJob)
	mux.Handle("leave", c.handleLeaveJob)

	if err := mux.ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "job conn closed", "error", err)
	}
}

func (c controller) handleJoinJob(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var jobId string
	if err := json.Unmarshal(payload, &jobId); err != nil {
		return c.sendError(conn, "job id must be a string")
	}

	latest, err := c.jobService.Join(&jobservice.JoinParams{
		Conn:  conn,
		JobId: jobId,
	})
	if err != nil {
		if errors.Is(err, jobservice.ErrJobNotFound) {
			return c.sendError(conn, err.Error())
		}
		return err
	}

	// replay the latest snapshots before acknowledging, so a joining
	// client never observes an empty progress state for a known job
	for _, info := range latest {
		if err := wsrouter.WriteMessage(conn, "progress", info); err != nil {
			return err
		}
	}

	return wsrouter.WriteMessage(conn, "joined", "ok")
}

func (c controller) handleLeaveJob(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	c.jobService.Leave(conn)
	return nil
}

func (c controller) writeProgress(conn *websocket.Conn, info domain.JobInfo) error {
	return wsrouter.WriteMessage(conn, "progress", info)
}

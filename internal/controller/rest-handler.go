package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JC-comp/karaoke/internal/domain"
	"github.com/JC-comp/karaoke/internal/service/room"
	"github.com/JC-comp/karaoke/pkg/ytvideodata"
)

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c controller) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type QueueItemInput struct {
	RoomId   string `json:"room_id" validate:"required"`
	ItemType string `json:"item_type" validate:"required,oneof=youtube schedule"`
	Item     struct {
		Id      string `json:"id"`
		JobId   string `json:"job_id"`
		Title   string `json:"title"`
		Channel string `json:"channel"`
	} `json:"item"`
}

func (c controller) queueItem(w http.ResponseWriter, r *http.Request) {
	var input QueueItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: "malformed body"})
		return
	}

	if validationErrors, ok := c.validate.Validate(&input); !ok {
		c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: validationErrors[0].Message})
		return
	}

	params := room.AddItemParams{
		Type:   input.ItemType,
		Title:  input.Item.Title,
		Artist: input.Item.Channel,
		RoomId: input.RoomId,
	}

	switch domain.ItemType(input.ItemType) {
	case domain.ItemTypeYoutube:
		if input.Item.Id == "" {
			c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: "item id is required"})
			return
		}
		params.Identifier = input.Item.Id

		if params.Title == "" {
			videoData, err := ytvideodata.Get(input.Item.Id)
			if err != nil {
				c.logger.DebugContext(r.Context(), "failed to resolve video data", "error", err)
			} else {
				params.Title = videoData.Title
				params.Artist = videoData.AuthorName
			}
		}
	case domain.ItemTypeSchedule:
		if input.Item.JobId == "" {
			c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: "item job_id is required"})
			return
		}
		params.Identifier = input.Item.JobId
	}

	addResp, err := c.roomService.AddItem(r.Context(), &params)
	if err != nil {
		if errors.Is(err, room.ErrPlaylistLimitReached) {
			c.writeJSON(w, http.StatusConflict, apiResponse{Message: err.Error()})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to add item", "error", err)
		c.writeJSON(w, http.StatusInternalServerError, apiResponse{Message: "failed to add item"})
		return
	}

	c.broadcastUpdate(r.Context(), &addResp, domain.RequestIdQueueAdd)

	c.writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (c controller) reportProgress(w http.ResponseWriter, r *http.Request) {
	var info domain.JobInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: "malformed body"})
		return
	}
	if info.Jid == "" {
		c.writeJSON(w, http.StatusBadRequest, apiResponse{Message: "jid is required"})
		return
	}

	progressResp := c.jobService.UpdateProgress(info)
	for _, conn := range progressResp.Conns {
		if err := c.writeProgress(conn, info); err != nil {
			c.logger.DebugContext(r.Context(), "failed to write progress", "error", err)
			conn.Close()
		}
	}

	c.writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/apierr"
	"github.com/mcoot/blackjack-go/internal/api/request"
	"github.com/mcoot/blackjack-go/internal/api/response"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/channels"
)

// ChannelHandler administers the channel allow-list
type ChannelHandler struct {
	channels *channels.Service
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(c *channels.Service) *ChannelHandler {
	return &ChannelHandler{channels: c}
}

// List handles GET /api/v1/channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.ChannelsFromModel(h.channels.List()))
}

// Allow handles POST /api/v1/channels
func (h *ChannelHandler) Allow(w http.ResponseWriter, r *http.Request) {
	var req request.AllowChannelRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	id := strings.TrimSpace(req.ChannelID)
	if id == "" {
		WriteError(w, apierr.NewInvalidRequestError("channel_id is required"))
		return
	}

	if err := h.channels.Allow(r.Context(), model.ChannelID(id)); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ChannelsFromModel(h.channels.List()))
}

// Remove handles DELETE /api/v1/channels/{id}
func (h *ChannelHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := model.ChannelID(mux.Vars(r)["id"])
	if err := h.channels.Remove(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Allowed handles GET /api/v1/channels/{id}/allowed
func (h *ChannelHandler) Allowed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	response.JSON(w, http.StatusOK, response.ChannelAllowed{
		ChannelID: id,
		Allowed:   h.channels.IsAllowed(model.ChannelID(id)),
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/proto"
)

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	svc *core.Service
	cfg *config.Config
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(svc *core.Service, cfg *config.Config, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		svc: svc,
		cfg: cfg,
		log: logger,
	}
}

// SendMessageRequest is the body of a message submission, as form or JSON.
type SendMessageRequest struct {
	Name    string `form:"name" json:"name"`
	Message string `form:"message" json:"message"`
}

// RoomResponse describes a room.
type RoomResponse struct {
	Room   string `json:"room"`
	Exists bool   `json:"exists"`
}

// ArchiveResponse holds the full stored history of a room.
type ArchiveResponse struct {
	Room     string               `json:"room"`
	Messages []proto.EventMessage `json:"messages"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RedirectDefault sends visitors of / to the default room.
// GET /
func (h *RoomHandlers) RedirectDefault(c *gin.Context) {
	c.Redirect(http.StatusPermanentRedirect, "/"+h.cfg.DefaultRoomID)
}

// WellKnown answers availability probes with an empty 200. The room is
// neither normalized nor created.
// GET /.well-known/:room
func (h *RoomHandlers) WellKnown(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Room reports whether the room has history: 200 if it does, 201 if the
// visitor is about to start a new one.
// GET /:room
func (h *RoomHandlers) Room(c *gin.Context) {
	roomID := roomFromContext(c)
	exists := h.svc.Exists(roomID)

	status := http.StatusCreated
	if exists {
		status = http.StatusOK
	}
	c.JSON(status, RoomResponse{Room: roomID, Exists: exists})
}

// PostMessage stores a message and publishes it to the room.
// POST /:room/messages
func (h *RoomHandlers) PostMessage(c *gin.Context) {
	roomID := roomFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxMessageBytes)

	var req SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debug().Err(err).Str("room", roomID).Msg("invalid message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	name := SanitizeName(req.Name)
	if name == "" {
		name = h.cfg.DefaultName
	}

	msg, ok := h.svc.Send(roomID, name, req.Message)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	h.log.Debug().Str("room", roomID).Str("sender", msg.Sender).Msg("message stored")
	c.JSON(http.StatusCreated, eventMessage(roomID, msg))
}

// Archive returns the full stored history of a room.
// GET /:room/archive
func (h *RoomHandlers) Archive(c *gin.Context) {
	roomID := roomFromContext(c)
	if !h.svc.Exists(roomID) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.JSON(http.StatusOK, ArchiveResponse{
		Room:     roomID,
		Messages: eventMessages(roomID, h.svc.Backlog(roomID, 0)),
	})
}

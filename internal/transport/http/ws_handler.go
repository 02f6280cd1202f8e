package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to a room subscription.
type WSHandler struct {
	svc *core.Service
	cfg *config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(svc *core.Service, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{svc: svc, cfg: cfg, log: logger}
}

// Serve handles GET /:room/chat.
func (h *WSHandler) Serve(c *gin.Context) {
	roomID := roomFromContext(c)
	connID := uuid.NewString()
	logger := h.log.With().Str("conn_id", connID).Str("room", roomID).Logger()

	conn, err := websocket.Accept(hijackableWriter(c.Writer), c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	conn.SetReadLimit(h.cfg.MaxMessageBytes)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, backlog := h.svc.Subscribe(roomID)
	defer h.svc.Unsubscribe(sub)
	logger.Info().Int("backlog", len(backlog)).Msg("ws connected")
	started := time.Now()

	if err := wsjson.Write(ctx, conn, outboundHistory(roomID, backlog)); err != nil {
		logger.Warn().Err(err).Msg("write ws history")
		return
	}

	limiter := newRateLimiter(h.cfg.MessagesPerMinute, time.Minute)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, roomID, limiter, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, roomID, sub, &logger)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status, reason := closeStatus(err)
	if status == websocket.StatusInternalError {
		logger.Warn().Err(err).Msg("ws connection closed with error")
	}
	logger.Info().Dur("duration", time.Since(started)).Msg("ws disconnected")
	conn.Close(status, reason)
}

// hijackableWriter returns the writer underneath gin's wrapper. gin refuses to
// hijack once a status has been written, and Accept writes 101 before hijacking.
func hijackableWriter(w stdhttp.ResponseWriter) stdhttp.ResponseWriter {
	if u, ok := w.(interface{ Unwrap() stdhttp.ResponseWriter }); ok {
		return u.Unwrap()
	}
	return w
}

// closeStatus picks the close frame for the error that ended a session.
func closeStatus(err error) (websocket.StatusCode, string) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing"
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return websocket.StatusNormalClosure, "closing"
	case websocket.StatusMessageTooBig:
		return websocket.StatusMessageTooBig, "message too big"
	}
	return websocket.StatusInternalError, err.Error()
}

func (h *WSHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	roomID string,
	limiter *rate.Limiter,
	logger *zerolog.Logger,
) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		sender, text, protoErr, err := inboundToMessage(inbound, h.cfg.DefaultName)
		if err != nil {
			logger.Debug().Err(err).Msg("malformed inbound frame")
			protoErr = &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed data"}
		}
		if protoErr != nil {
			if err := wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr}); err != nil {
				return err
			}
			continue
		}

		if !limiter.Allow() {
			if err := wsjson.Write(ctx, conn, outboundError(core.ErrRateLimited)); err != nil {
				return err
			}
			continue
		}

		// Accepted messages come back through the subscription.
		if _, ok := h.svc.Send(roomID, sender, text); !ok {
			if err := wsjson.Write(ctx, conn, outboundError(core.ErrEmptyMessage)); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	roomID string,
	sub *core.Subscription,
	logger *zerolog.Logger,
) error {
	messages := sub.Messages()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundMessage(roomID, msg)); err != nil {
				logger.Warn().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

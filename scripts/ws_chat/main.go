package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/Saiv46/AAWC/internal/log"
	"github.com/Saiv46/AAWC/internal/proto"
)

// inbound mirrors proto.Outbound with a raw payload.
type inbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	logger := log.NewWithWriter(os.Stderr, "info", log.FormatConsole)
	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("ws_chat failed")
		os.Exit(1)
	}
}

func run(logger *zerolog.Logger) error {
	server := flag.String("server", "ws://localhost:8080", "server base URL")
	name := flag.String("name", "cli-user", "display name")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	addr := strings.TrimRight(*server, "/") + "/" + *room + "/chat"
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s as %s\n", addr, *name)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn, logger)
	}()

	writeLoop(ctx, conn, *name, logger)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, logger *zerolog.Logger) {
	for {
		var in inbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			logger.Warn().Err(err).Msg("read error")
			return
		}

		if in.Type == proto.OutboundTypeError && in.Error != nil {
			fmt.Printf("! %s: %s\n", in.Error.Code, in.Error.Msg)
			continue
		}

		switch in.Event {
		case proto.OutboundEventHistory:
			var history proto.EventHistory
			if err := json.Unmarshal(in.Data, &history); err != nil {
				logger.Warn().Err(err).Msg("unmarshal history")
				continue
			}
			for _, m := range history.Messages {
				printMessage(m)
			}
		case proto.OutboundEventMessage:
			var m proto.EventMessage
			if err := json.Unmarshal(in.Data, &m); err != nil {
				logger.Warn().Err(err).Msg("unmarshal message")
				continue
			}
			printMessage(m)
		default:
			fmt.Printf("event=%s data=%s\n", in.Event, in.Data)
		}
	}
}

func printMessage(m proto.EventMessage) {
	fmt.Printf("[%s] %s: %s\n", m.Time, m.User, m.Text)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, name string, logger *zerolog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.MsgData{Name: name, Text: text})
			if err != nil {
				logger.Error().Err(err).Msg("marshal msg")
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}); err != nil {
				logger.Error().Err(err).Msg("send error")
				return
			}
		}
	}
}

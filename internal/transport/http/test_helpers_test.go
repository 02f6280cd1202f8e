package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/proto"
)

// testOutbound mirrors proto.Outbound with a raw payload so tests can
// decode the data for the event they expect.
type testOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*httptest.Server, *core.Service) {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := zerolog.Nop()

	store := core.NewMessageStore(cfg.MessageTTL, nil)
	svc := core.NewService(store, core.NewHub(), core.Options{
		MaxLastMessages:  cfg.MaxLastMessages,
		SubscriberBuffer: cfg.SubscriberBuffer,
	})

	server := NewServer(svc, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts, svc
}

// noRedirectClient returns a client that reports redirects instead of following them.
func noRedirectClient(ts *httptest.Server) *http.Client {
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func dialRoom(t *testing.T, ts *httptest.Server, room string) (*websocket.Conn, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/" + room + "/chat"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn, ctx
}

func readOutbound(t *testing.T, ctx context.Context, conn *websocket.Conn) testOutbound {
	t.Helper()

	var out testOutbound
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

func readHistory(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.EventHistory {
	t.Helper()

	out := readOutbound(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeEvent, out.Type)
	require.Equal(t, proto.OutboundEventHistory, out.Event)

	var history proto.EventHistory
	require.NoError(t, json.Unmarshal(out.Data, &history))
	return history
}

func decodeMessage(t *testing.T, out testOutbound) proto.EventMessage {
	t.Helper()

	require.Equal(t, proto.OutboundTypeEvent, out.Type)
	require.Equal(t, proto.OutboundEventMessage, out.Event)

	var msg proto.EventMessage
	require.NoError(t, json.Unmarshal(out.Data, &msg))
	return msg
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, name, text string) {
	t.Helper()

	payload, err := json.Marshal(proto.MsgData{Name: name, Text: text})
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}))
}

package http

import (
	"encoding/json"
	"time"

	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/proto"
)

// inboundToMessage extracts sender and text from a client frame. A non-nil
// proto.Error is reported back to the client; err means the frame is unusable.
func inboundToMessage(inbound proto.Inbound, defaultName string) (sender, text string, protoErr *proto.Error, err error) {
	switch inbound.Type {
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return "", "", nil, err
		}
		name := SanitizeName(msg.Name)
		if name == "" {
			name = defaultName
		}
		return name, msg.Text, nil, nil
	default:
		return "", "", &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unsupported type"}, nil
	}
}

func eventMessage(room string, msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		Room: room,
		User: msg.Sender,
		Text: msg.Text,
		TS:   msg.Timestamp,
		Time: msg.Time().UTC().Format(time.RFC3339Nano),
	}
}

func eventMessages(room string, msgs []core.Message) []proto.EventMessage {
	out := make([]proto.EventMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, eventMessage(room, m))
	}
	return out
}

func outboundMessage(room string, msg core.Message) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.OutboundEventMessage,
		Data:  eventMessage(room, msg),
	}
}

func outboundHistory(room string, msgs []core.Message) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.OutboundEventHistory,
		Data:  proto.EventHistory{Room: room, Messages: eventMessages(room, msgs)},
	}
}

func outboundError(err *core.CoreError) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: err.Code, Msg: err.Message},
	}
}

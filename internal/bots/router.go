package bots

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/gateway"
)

// MessageHandler turns an incoming message into replies.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) ([]OutgoingMessage, error)
}

// Router is the platform-agnostic entry point: it asks a handler for
// replies and delivers them through a ContainerSender.
type Router struct {
	handler MessageHandler
	sender  ContainerSender
	logger  *slog.Logger
}

// NewRouter creates a Router. A nil logger means slog.Default().
func NewRouter(handler MessageHandler, sender ContainerSender, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{handler: handler, sender: sender, logger: logger}
}

// Reply routes an incoming message through the handler without sending.
func (r *Router) Reply(ctx context.Context, msg IncomingMessage) ([]OutgoingMessage, error) {
	replies, err := r.handler.HandleMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("handling message %s: %w", msg.TraceID, err)
	}
	return replies, nil
}

// Process handles msg and delivers every reply in order. The returned
// slice has one entry per delivered reply; nil entries are sends Discord
// rejected.
func (r *Router) Process(ctx context.Context, msg IncomingMessage) ([]discord.Message, error) {
	if msg.TraceID == "" {
		msg.TraceID = uuid.NewString()
	}
	replies, err := r.Reply(ctx, msg)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("handled message",
		slog.String("trace_id", msg.TraceID),
		slog.String("platform", string(msg.Platform)),
		slog.Int("replies", len(replies)),
	)
	return r.Deliver(ctx, msg.TraceID, replies)
}

// Deliver sends replies one after another and stops at the first
// transport error.
func (r *Router) Deliver(ctx context.Context, traceID string, replies []OutgoingMessage) ([]discord.Message, error) {
	sent := make([]discord.Message, 0, len(replies))
	for _, out := range replies {
		var (
			msg discord.Message
			err error
		)
		if out.Multi || len(out.Texts) != 1 {
			msg, err = r.sender.SendMany(ctx, out.Channel, out.Texts, out.Overrides)
		} else {
			msg, err = r.sender.Send(ctx, out.Channel, out.Texts[0], out.Overrides)
		}
		if err != nil {
			return sent, fmt.Errorf("delivering reply to %s: %w", out.Channel, err)
		}
		if msg == nil {
			r.logger.Warn("reply rejected", slog.String("trace_id", traceID), slog.String("channel_id", out.Channel.ID()))
		}
		sent = append(sent, msg)
	}
	return sent, nil
}

// OnGatewayMessage adapts a gateway MESSAGE_CREATE into Process. Errors
// are logged since the gateway has nobody to return them to.
func (r *Router) OnGatewayMessage(ctx context.Context, m gateway.MessageCreate) {
	msg := IncomingMessage{
		Platform:  PlatformGateway,
		Channel:   discord.FromHandle(m.Channel()),
		GuildID:   m.GuildID,
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		Text:      m.Content,
		MessageID: m.ID,
		TraceID:   uuid.NewString(),
	}
	if _, err := r.Process(ctx, msg); err != nil {
		r.logger.Error("processing gateway message",
			slog.String("trace_id", msg.TraceID),
			slog.String("error", err.Error()),
		)
	}
}

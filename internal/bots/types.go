package bots

import (
	"context"

	"github.com/ziadkadry99/containerbot/internal/discord"
)

// Platform identifies how a message reached the bot.
type Platform string

const (
	PlatformGateway     Platform = "gateway"
	PlatformInteraction Platform = "interaction"
)

// IncomingMessage represents a command received from any entry point.
type IncomingMessage struct {
	Platform  Platform
	Channel   discord.Target
	GuildID   string
	UserID    string
	UserName  string
	Text      string
	MessageID string
	TraceID   string // assigned by Router when empty
}

// OutgoingMessage is one container message to send back.
type OutgoingMessage struct {
	Channel   discord.Target
	Texts     []string
	Multi     bool // always build one text display per entry of Texts
	Overrides discord.Overrides
}

// Document builds the message body for o.
func (o OutgoingMessage) Document() discord.Document {
	if o.Multi || len(o.Texts) != 1 {
		return discord.BuildMany(o.Texts, o.Overrides)
	}
	return discord.Build(o.Texts[0], o.Overrides)
}

// ContainerSender delivers container messages. *discord.Client implements it.
type ContainerSender interface {
	Send(ctx context.Context, target discord.Target, content string, overrides discord.Overrides) (discord.Message, error)
	SendMany(ctx context.Context, target discord.Target, contents []string, overrides discord.Overrides) (discord.Message, error)
}

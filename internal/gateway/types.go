package gateway

// DefaultURL is the Discord gateway endpoint for API v10 with JSON frames.
const DefaultURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway intents used by the bot.
const (
	IntentGuilds         = 1 << 0
	IntentGuildMessages  = 1 << 9
	IntentDirectMessages = 1 << 12
	IntentMessageContent = 1 << 15

	DefaultIntents = IntentGuilds | IntentGuildMessages | IntentDirectMessages | IntentMessageContent
)

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// User is the subset of a Discord user the bot reads.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Channel is a channel handle. It satisfies discord.Identifiable.
type Channel struct {
	ID string
}

func (c Channel) GetID() string { return c.ID }

// MessageCreate is the payload of a MESSAGE_CREATE dispatch.
type MessageCreate struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    User   `json:"author"`
}

// Channel returns a handle for the channel the message was posted in.
func (m MessageCreate) Channel() Channel {
	return Channel{ID: m.ChannelID}
}

// ready is the payload of a READY dispatch.
type ready struct {
	User      User   `json:"user"`
	SessionID string `json:"session_id"`
}

type frame struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

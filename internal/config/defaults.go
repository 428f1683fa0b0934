package config

import (
	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/gateway"
)

// DefaultPath is where init writes and the CLI reads the config file.
const DefaultPath = ".containerbot.yml"

// TokenEnvVars are consulted in order when no token is configured.
// BETA_TOKEN is the variable older demo .env files use.
var TokenEnvVars = []string{"DISCORD_TOKEN", "BETA_TOKEN"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:    discord.DefaultBaseURL,
		GatewayURL:    gateway.DefaultURL,
		CommandPrefix: "!",
		Intents:       gateway.DefaultIntents,
		LogLevel:      "info",
		Port:          8080,
	}
}

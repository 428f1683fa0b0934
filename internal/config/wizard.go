package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path. The bot token is
// never written; the wizard only reminds the user where to put it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to containerbot! Let's configure your bot.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Default channel.
	channelPrompt := promptui.Prompt{
		Label:    "Default channel ID (leave blank to pass --channel every time)",
		Validate: validateSnowflake,
	}
	channelID, err := channelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("channel id: %w", err)
	}
	cfg.ChannelID = strings.TrimSpace(channelID)

	// 2. Command prefix for the gateway bot.
	prefixPrompt := promptui.Prompt{
		Label:   "Command prefix",
		Default: cfg.CommandPrefix,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("prefix cannot be empty")
			}
			return nil
		},
	}
	prefix, err := prefixPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("command prefix: %w", err)
	}
	cfg.CommandPrefix = strings.TrimSpace(prefix)

	// 3. Interactions endpoint.
	modePrompt := promptui.Select{
		Label: "Enable the HTTP interactions endpoint?",
		Items: []string{
			"no  - gateway bot and CLI only",
			"yes - serve slash commands over HTTP",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("interactions selection: %w", err)
	}

	if modeIdx == 1 {
		keyPrompt := promptui.Prompt{
			Label: "Application public key (hex)",
			Validate: func(s string) error {
				probe := *cfg
				probe.PublicKey = strings.TrimSpace(s)
				return probe.Validate()
			},
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("public key: %w", err)
		}
		cfg.PublicKey = strings.TrimSpace(key)

		portPrompt := promptui.Prompt{
			Label:   "Port to listen on",
			Default: strconv.Itoa(cfg.Port),
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > 65535 {
					return fmt.Errorf("port must be a number between 1 and 65535")
				}
				return nil
			},
		}
		portStr, err := portPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("port: %w", err)
		}
		cfg.Port, _ = strconv.Atoi(portStr)
	}

	// Check for a token.
	if _, err := cfg.ResolveToken(); err != nil {
		fmt.Printf("\nNote: Set %sTOKEN or DISCORD_TOKEN in your environment (or .env) before sending.\n", EnvPrefix)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// validateSnowflake accepts an empty string or a decimal Discord id.
func validateSnowflake(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("channel id must be numeric")
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

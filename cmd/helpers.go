package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"github.com/ziadkadry99/containerbot/internal/config"
	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/logging"
)

// errRejected is returned when Discord refused at least one message. The
// client has already logged the status and body.
var errRejected = errors.New("message rejected by Discord")

// loadConfig loads .env, the config file and environment overrides, then
// installs the configured logger as the slog default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w\nRun `containerbot init` to create a config file", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newClient creates a Discord client from config.
func newClient(cfg *config.Config, logger *slog.Logger) (*discord.Client, error) {
	token, err := cfg.ResolveToken()
	if err != nil {
		return nil, err
	}
	return newClientWithToken(cfg, token, logger), nil
}

// newClientWithToken creates a Discord client for an already resolved token.
func newClientWithToken(cfg *config.Config, token string, logger *slog.Logger) *discord.Client {
	return discord.NewClient(token,
		discord.WithBaseURL(cfg.APIBaseURL),
		discord.WithLogger(logger),
	)
}

// channels returns the --channel values, or the configured default.
func channels(flagValues []string, cfg *config.Config) ([]string, error) {
	if len(flagValues) > 0 {
		return flagValues, nil
	}
	if cfg.ChannelID == "" {
		return nil, errors.New("no channel given: pass --channel or set channel_id in the config")
	}
	return []string{cfg.ChannelID}, nil
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/bots"
	"github.com/ziadkadry99/containerbot/internal/gateway"
)

// reconnectDelay is the pause between gateway sessions.
const reconnectDelay = 5 * time.Second

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the demo bot over the Discord gateway",
	Long: `Connects to the Discord gateway and answers prefix commands (for example
!test) with container messages. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		token, err := cfg.ResolveToken()
		if err != nil {
			return err
		}
		client := newClientWithToken(cfg, token, logger)

		router := bots.NewRouter(bots.NewProcessor(cfg.CommandPrefix), client, logger)
		session := gateway.New(token, router.OnGatewayMessage,
			gateway.WithURL(cfg.GatewayURL),
			gateway.WithIntents(cfg.Intents),
			gateway.WithLogger(logger),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "containerbot %s connecting to the gateway (prefix %q)\n", Version, cfg.CommandPrefix)

		for {
			err := session.Run(ctx)
			if ctx.Err() != nil {
				fmt.Fprintln(os.Stderr, "\nShutting down bot...")
				return nil
			}
			if errors.Is(err, gateway.ErrReconnect) {
				logger.Info("gateway asked to reconnect")
			} else {
				logger.Warn("gateway session ended", slog.Any("error", err))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(reconnectDelay):
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

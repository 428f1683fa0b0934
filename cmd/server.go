package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/bots"
	"github.com/ziadkadry99/containerbot/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the Discord interactions endpoint",
	Long: `Starts an HTTP server with the Discord interactions endpoint at
/api/bots/discord/interactions. Slash commands are answered like the
gateway bot's prefix commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}
		publicKey, err := bots.ParsePublicKey(cfg.PublicKey)
		if err != nil {
			return err
		}
		if publicKey == nil {
			logger.Warn("public_key is not set; interaction signatures will not be verified")
		}

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: cfg.AllowAllOrigins,
		}, logger)

		router := bots.NewRouter(bots.NewProcessor(cfg.CommandPrefix), client, logger)
		interactions := bots.NewInteractionHandler(router, publicKey, cfg.CommandPrefix, logger)
		bots.RegisterRoutes(srv.Router(), interactions)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "containerbot server %s starting on port %d\n", Version, port)

		return serveInteractions(ctx, srv, srv.Start, interactions, logger)
	},
}

// serveInteractions runs start until ctx ends, then shuts srv down and
// waits for interaction follow-up deliveries.
func serveInteractions(ctx context.Context, srv *server.Server, start func() error, interactions *bots.InteractionHandler, logger *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	}()

	if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Start returns as soon as Shutdown begins. Once Shutdown itself has
	// returned, every handler has finished and queued its follow-ups.
	<-done
	interactions.Wait()
	return nil
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}

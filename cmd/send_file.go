package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/markdown"
	"github.com/ziadkadry99/containerbot/internal/progress"
)

var (
	sendFileChannel string
	sendFileLevel   int
)

var sendFileCmd = &cobra.Command{
	Use:   "send-file <pattern>...",
	Short: "Send markdown files as containers, one text block per section",
	Long: `Expands the glob patterns (** is supported), splits every markdown file at
its headings and sends one container per file with a text block per section.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}
		var flagChannels []string
		if sendFileChannel != "" {
			flagChannels = []string{sendFileChannel}
		}
		ids, err := channels(flagChannels, cfg)
		if err != nil {
			return err
		}
		files, err := markdown.Expand(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		msgs, err := sendFiles(ctx, client, discord.RawID(ids[0]), files, sendFileLevel, logger)
		if err != nil {
			return err
		}
		return printResults(cmd.OutOrStdout(), msgs)
	},
}

type manySender interface {
	SendMany(ctx context.Context, target discord.Target, contents []string, overrides discord.Overrides) (discord.Message, error)
}

// sendFiles sends one container per file. Files without any content are
// skipped.
func sendFiles(ctx context.Context, sender manySender, target discord.Target, files []string, level int, logger *slog.Logger) ([]discord.Message, error) {
	reporter := progress.NewReporter()
	reporter.Start(len(files))
	defer reporter.Finish()

	var msgs []discord.Message
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return msgs, fmt.Errorf("reading %s: %w", path, err)
		}
		sections := markdown.Split(src, level)
		if len(sections) == 0 {
			logger.Warn("skipping empty file", slog.String("path", path))
			reporter.Update(i+1, path)
			continue
		}
		msg, err := sender.SendMany(ctx, target, sections, nil)
		if err != nil {
			return msgs, fmt.Errorf("sending %s: %w", path, err)
		}
		msgs = append(msgs, msg)
		reporter.Update(i+1, path)
	}
	return msgs, nil
}

func init() {
	sendFileCmd.Flags().StringVar(&sendFileChannel, "channel", "", "target channel ID (default channel_id from config)")
	sendFileCmd.Flags().IntVar(&sendFileLevel, "level", markdown.DefaultLevel, "deepest heading level that starts a new text block")
	rootCmd.AddCommand(sendFileCmd)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/progress"
)

var (
	sendChannels []string
	sendSet      []string
)

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a container with one text block",
	Long: `Sends a single-text container to each --channel (or the configured
channel_id) and prints the message Discord returns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		return runSend(cmd, func(ctx context.Context, c *discord.Client, t discord.Target, o discord.Overrides) (discord.Message, error) {
			return c.Send(ctx, t, content, o)
		})
	},
}

var sendManyCmd = &cobra.Command{
	Use:   "send-many <text>...",
	Short: "Send a container with one text block per argument",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd, func(ctx context.Context, c *discord.Client, t discord.Target, o discord.Overrides) (discord.Message, error) {
			return c.SendMany(ctx, t, args, o)
		})
	},
}

type sendFunc func(ctx context.Context, c *discord.Client, t discord.Target, o discord.Overrides) (discord.Message, error)

// runSend performs send for every selected channel and prints the results.
func runSend(cmd *cobra.Command, send sendFunc) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	overrides, err := discord.ParseOverrides(sendSet)
	if err != nil {
		return err
	}
	ids, err := channels(sendChannels, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgs, err := broadcast(ctx, ids, func(ctx context.Context, t discord.Target) (discord.Message, error) {
		return send(ctx, client, t, overrides)
	})
	if err != nil {
		return err
	}
	return printResults(cmd.OutOrStdout(), msgs)
}

// broadcast calls send for each channel in order and stops at the first
// transport error. A progress reporter is shown for more than one channel.
func broadcast(ctx context.Context, ids []string, send func(context.Context, discord.Target) (discord.Message, error)) ([]discord.Message, error) {
	var reporter progress.Reporter
	if len(ids) > 1 {
		reporter = progress.NewReporter()
		reporter.Start(len(ids))
		defer reporter.Finish()
	}

	msgs := make([]discord.Message, 0, len(ids))
	for i, id := range ids {
		msg, err := send(ctx, discord.RawID(id))
		if err != nil {
			return msgs, fmt.Errorf("sending to channel %s: %w", id, err)
		}
		msgs = append(msgs, msg)
		if reporter != nil {
			reporter.Update(i+1, "channel "+id)
		}
	}
	return msgs, nil
}

// printResults prints each returned message as JSON. Rejected sends print
// null and turn into errRejected.
func printResults(w io.Writer, msgs []discord.Message) error {
	rejected := false
	for _, m := range msgs {
		if m == nil {
			rejected = true
		}
		if err := printJSON(w, m); err != nil {
			return err
		}
	}
	if rejected {
		return errRejected
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{sendCmd, sendManyCmd} {
		c.Flags().StringArrayVar(&sendChannels, "channel", nil, "target channel ID (repeatable, default channel_id from config)")
		c.Flags().StringArrayVar(&sendSet, "set", nil, "extra message field as key=value (repeatable)")
		rootCmd.AddCommand(c)
	}
}

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/discord"
)

var (
	buildMany bool
	buildSet  []string
)

var buildCmd = &cobra.Command{
	Use:   "build <text>...",
	Short: "Print the message JSON for a container without sending it",
	Long: `Builds the Components V2 message body and prints it. Without --many exactly
one text is expected; with --many every argument becomes its own text block.
--set key=value adds top-level message fields; JSON values are decoded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := discord.ParseOverrides(buildSet)
		if err != nil {
			return err
		}

		var doc discord.Document
		if buildMany {
			doc = discord.BuildMany(args, overrides)
		} else {
			if len(args) != 1 {
				return errors.New("build takes exactly one text; use --many for several")
			}
			doc = discord.Build(args[0], overrides)
		}
		return printJSON(cmd.OutOrStdout(), doc)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildMany, "many", false, "one text block per argument")
	buildCmd.Flags().StringArrayVar(&buildSet, "set", nil, "extra message field as key=value (repeatable)")
	rootCmd.AddCommand(buildCmd)
}

package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "containerbot",
	Short: "Send Discord Components V2 container messages",
	Long: `containerbot builds Discord messages made of a single container with
one or more markdown text blocks and posts them with a bot token. It can
also run a small demo bot over the gateway or the interactions endpoint,
and exposes its send operations to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".containerbot.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with the bot token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

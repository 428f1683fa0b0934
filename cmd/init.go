package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/containerbot/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize containerbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure containerbot and generates a .containerbot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Exists(cfgFile) && !initForce {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("%s already exists. Overwrite", cfgFile),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Keeping existing config.")
				return nil
			}
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config without asking")
	rootCmd.AddCommand(initCmd)
}

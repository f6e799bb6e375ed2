package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yeorinhieut/novel-dl/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config profiles of novel-dl",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()
		return nil
	},
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	reader := bufio.NewReader(os.Stdin)
	resp, _ := reader.ReadString('\n')
	resp = strings.TrimSpace(strings.ToLower(resp))

	return resp == "y" || resp == "yes"
}

func init() {
	configCmd.AddCommand(
		configInitCmd,
		configAddCmd,
		configListCmd,
		configSwitchCmd,
		configResetCmd,
		configRenameCmd,
		configRemoveCmd,
		configEditCmd,
	)
	rootCmd.AddCommand(configCmd)
}

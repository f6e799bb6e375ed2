package cmd

import (
	"fmt"
	"strings"

	"github.com/yeorinhieut/novel-dl/internal/config"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add <label> [file]",
	Short: "Create a new config from the defaults or from an existing YAML file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()
		label := strings.TrimSpace(args[0])

		if len(args) == 2 {
			if err := store.Add(label, args[1]); err != nil {
				return err
			}
			fmt.Printf("Imported %s as config %q\n", args[1], label)
			return nil
		}

		path, err := store.Create(label)
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

package cmd

import (
	"fmt"

	"github.com/brogergvhs/malview/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename [old_label] <new_label>",
	Short: "Rename a config profile; with one label the active profile is renamed",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newLabel := args[len(args)-1]

		oldLabel := ""
		if len(args) == 2 {
			oldLabel = args[0]
		} else {
			active, err := config.CurrentLabel()
			if err != nil {
				return fmt.Errorf("no active config to rename: %w", err)
			}
			oldLabel = active
		}

		if oldLabel == config.DefaultLabel {
			return fmt.Errorf("cannot rename the %s config", config.DefaultLabel)
		}

		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Renamed config %q → %q\n", oldLabel, newLabel)
		if active, _ := config.CurrentLabel(); active == newLabel {
			fmt.Fprintf(out, "Active config is now %q\n", newLabel)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}

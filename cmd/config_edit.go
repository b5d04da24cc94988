package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/brogergvhs/malview/internal/config"

	"github.com/spf13/cobra"
)

var configEditCmd = &cobra.Command{
	Use:   "edit [label]",
	Short: "Open the current or given config in $EDITOR",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string

		if len(args) == 0 {
			var err error
			path, err = config.ActiveConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get current config: %w", err)
			}
		} else {
			path = filepath.Join(config.ConfigsDir(), args[0]+".yaml")
		}

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %w", path, config.ErrConfigNotFound)
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		cmdExec := exec.Command(editor, path)
		cmdExec.Stdin = os.Stdin
		cmdExec.Stdout = os.Stdout
		cmdExec.Stderr = os.Stderr

		if err := cmdExec.Run(); err != nil {
			return fmt.Errorf("failed to open editor: %w", err)
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configEditCmd)
}

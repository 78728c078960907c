package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/autostart"
)

//nolint:gochecknoglobals // Cobra command tree.
var autostartCmd = &cobra.Command{
	Use:       "autostart {enable|disable|status}",
	Short:     "Manage starting alarmd at login.",
	Long:      "Registers or removes an entry that starts alarmd with the current settings file when the user logs in.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"enable", "disable", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := autostart.New(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		switch args[0] {
		case "enable":
			return entry.Enable(ctx)
		case "disable":
			return entry.Disable(ctx)
		default:
			state := "disabled"
			if entry.Enabled() {
				state = "enabled"
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Autostart is %s\n", state)

			return nil
		}
	},
}

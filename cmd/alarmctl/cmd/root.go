package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the daemon address.
	serverAddress string

	// rootCmd represents the base command of the control tool.
	rootCmd = &cobra.Command{
		Use:   "alarmctl",
		Short: "Control a running alarm clock.",
		Long: `Adds, lists and deletes alarms of a running alarmd, silences or snoozes the
ringing alarm and follows what the daemon does.

Times are HH:MM:SS in the daemon's time zone. The daemon address comes from the
configuration file unless --server is given.`,
		SilenceUsage: true,
	}
)

// Execute runs the alarmctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withRunner connects to the daemon for the duration of fn.
func withRunner(cmd *cobra.Command, fn func(context.Context, *client.Runner) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runner, err := client.Connect(ctx, &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = runner.Close()
	}()

	return fn(ctx, runner)
}

// simple builds a command without arguments that calls one runner method.
func simple(use, short string, call func(*client.Runner, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRunner(cmd, func(ctx context.Context, r *client.Runner) error {
				return call(r, ctx)
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "alarmd address, overrides the configuration")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:     "add HH:MM:SS TONE",
			Short:   "Schedule an alarm.",
			Example: "  alarmctl add 07:30:00 bell.wav",
			Args:    cobra.ExactArgs(2), //nolint:mnd // Time and tone.
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(ctx context.Context, r *client.Runner) error {
					return r.Add(ctx, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an alarm by its id or a unique id prefix as printed by list.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(ctx context.Context, r *client.Runner) error {
					return r.Delete(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "export FILE",
			Short: "Write the scheduled alarms as an iCalendar file, - for stdout.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(ctx context.Context, r *client.Runner) error {
					return r.Export(ctx, args[0])
				})
			},
		},
		simple("list", "List scheduled alarms.", (*client.Runner).List),
		simple("tones", "List the available tones.", (*client.Runner).Tones),
		simple("snooze", "Silence the ringing alarm and ring it again later.", (*client.Runner).Snooze),
		simple("stop", "Silence the ringing alarm.", (*client.Runner).Stop),
		simple("status", "Show whether an alarm is ringing.", (*client.Runner).Status),
		simple("watch", "Follow daemon events until interrupted.", (*client.Runner).Watch),
		simple("shutdown", "Stop the daemon.", (*client.Runner).Shutdown),
	)
}

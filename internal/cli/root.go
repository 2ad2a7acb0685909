package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolforge",
		Short: "Toolforge manages agent tool functions in a shared Go source file",
		Long: "Toolforge stores named tool functions in one Go source file and keeps it\n" +
			"valid across edits. It generates agent directories that reference those\n" +
			"functions and serves a management API for editor UIs.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.toolforge/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newToolCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newWeatherCmd())
	cmd.AddCommand(newTimeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/weather"
)

func newWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city>",
		Short: "Look up current weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			client := weather.NewClient(cfg.Lookup, log)
			report, err := client.Current(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}
}

func newTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time <city>",
		Short: "Look up the current local time in a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			client := weather.NewClient(cfg.Lookup, log)
			report, err := client.LocalTime(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}
}

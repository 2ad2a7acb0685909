package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/toolforge/internal/agents"
	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/funcstore"
	"github.com/soyeahso/toolforge/internal/logging"
	"github.com/soyeahso/toolforge/internal/server"
	"github.com/soyeahso/toolforge/internal/store"
	"github.com/soyeahso/toolforge/internal/weather"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the management API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// Rebuild the logger with the configured level and style unless
			// --log-level overrode it.
			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			log = logging.NewStyled(nil, level, cfg.Logging.ConsoleStyle)

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			tools, err := funcstore.New(paths.ToolsFile, log)
			if err != nil {
				return err
			}
			agentMgr := agents.NewManager(paths.Agents, paths.Tools, cfg.Models.Default, tools, log)

			opts := []server.ServerOption{
				server.WithLookup(weather.NewClient(cfg.Lookup, log)),
			}

			if cfg.HistoryEnabled() {
				dbPath := filepath.Join(paths.Data, "toolforge.db")
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				opts = append(opts, server.WithRevisions(store.NewRevisionStore(db)))
				log.Info().Str("path", dbPath).Msg("revision history enabled")
			} else {
				log.Info().Msg("revision history disabled")
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, log, tools, agentMgr, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}

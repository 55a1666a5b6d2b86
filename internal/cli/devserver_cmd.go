package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/devserver"
	"github.com/tgienger/ptrack/internal/logging"
)

func newDevServerCmd(app *App) *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local GraphQL server for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				p, err := db.DataPath("devserver.db")
				if err != nil {
					return err
				}
				dbPath = p
			}
			if addr == "" {
				addr = app.cfg.DevServerAddr
			}

			store, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer store.Close()
			if err := store.SeedOrganizations(); err != nil {
				return fmt.Errorf("seeding organizations: %w", err)
			}

			if app.cfg.Env != logging.EnvLocal {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving GraphQL on http://%s%s (database %s)\n", addr, devserver.Path, dbPath)
			return devserver.New(store, app.log).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database file (use :memory: for a throwaway store)")
	return cmd
}

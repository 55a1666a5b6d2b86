package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/ui"
)

var errNotInteractive = errors.New("the interactive UI needs a terminal; use a subcommand instead (see ptrack --help)")

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive project browser (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !app.IsInteractive() {
		return errNotInteractive
	}

	// Settings are a convenience; the UI still works without them
	settings, err := db.New()
	if err != nil {
		app.log.WithError(err).Warn("settings database unavailable")
		settings = nil
	} else {
		defer settings.Close()
	}

	model := ui.NewApp(cmd.Context(), ui.Options{
		Client:      app.client,
		Settings:    settings,
		OrgSlug:     app.cfg.OrgSlug,
		AuthorEmail: app.cfg.AuthorEmail,
		Log:         app.log,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interactive UI: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/config"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/logging"
)

// App holds what the commands share once flags and config are resolved.
type App struct {
	Version string

	// IsInteractive reports whether prompts and the TUI may use the terminal
	IsInteractive func() bool

	// Doer replaces the HTTP transport when set
	Doer graphql.Doer

	// Logger replaces the file logger when set
	Logger *logrus.Entry

	cfg     *config.Config
	log     *logrus.Entry
	closer  io.Closer
	client  *client.Client
	cfgPath string
}

// NewRootCmd creates the top-level "ptrack" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.IsInteractive == nil {
		app.IsInteractive = func() bool { return false }
	}

	root := &cobra.Command{
		Use:           "ptrack",
		Short:         "Track projects, tasks and comments for your organization",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&app.cfgPath, "config", "", "config file (default "+config.DefaultPath()+")")
	f.String("env", "", "environment: local, dev or prod")
	f.String("graphql-uri", "", "GraphQL endpoint")
	f.String("org", "", "organization slug")
	f.String("author", "", "author email for new comments")
	f.Duration("timeout", 0, "request timeout")
	f.String("log-level", "", "log level override")
	f.String("log-file", "", "log file path")

	root.AddCommand(
		newProjectsCmd(app),
		newTasksCmd(app),
		newCommentsCmd(app),
		newStatsCmd(app),
		newConfigCmd(app),
		newDevServerCmd(app),
		newTUICmd(app),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.Logger != nil {
		a.log = a.Logger
	} else {
		log, closer, err := logging.Setup(cfg.Env, cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.log, a.closer = log, closer
	}
	a.log.WithField("command", cmd.CommandPath()).Debug("starting")

	doer := a.Doer
	if doer == nil {
		doer = graphql.NewClient(graphql.Config{
			Endpoint: cfg.GraphQLURI,
			OrgSlug:  cfg.OrgSlug,
			Timeout:  cfg.Timeout,
		}, a.log)
	}
	a.client = client.New(doer, cache.NewStore(), a.log)
	return nil
}

func (a *App) teardown() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

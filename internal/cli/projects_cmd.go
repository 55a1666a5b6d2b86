package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/models"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List, create and update projects",
	}

	cmd.AddCommand(
		newProjectsListCmd(app),
		newProjectsCreateCmd(app),
		newProjectsUpdateCmd(app),
	)

	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var withTasks bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the organization's projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fetch := app.client.FetchProjects
			if withTasks {
				fetch = app.client.FetchProjectsWithTasks
			}
			projects, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), projects, withTasks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTasks, "with-tasks", false, "Include task completion counts")
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var name, description, status, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && app.IsInteractive() {
				if status == "" {
					status = string(models.ProjectActive)
				}
				if err := projectForm(&name, &description, &status, &due).Run(); err != nil {
					return err
				}
			}

			in := client.CreateProjectInput{
				Name:        name,
				Description: description,
				Status:      parseProjectStatus(status),
			}
			if due != "" {
				d, err := models.ParseDate(due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				in.DueDate = &d
			}

			p, err := app.client.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			printCreated(cmd.OutOrStdout(), "project", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().StringVar(&status, "status", "", "Status: active, completed, on-hold (default active)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var name, description, status, due string

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update the given fields of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.UpdateProjectInput{ProjectID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("description") {
				in.Description = &description
			}
			if flags.Changed("status") {
				s := parseProjectStatus(status)
				in.Status = &s
			}
			if flags.Changed("due") {
				d, err := models.ParseDate(due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				in.DueDate = &d
			}

			p, err := app.client.UpdateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), []models.Project{p}, false)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

// parseProjectStatus passes unrecognized input through so the client's
// validation reports it.
func parseProjectStatus(s string) models.ProjectStatus {
	if s == "" {
		return ""
	}
	if status, ok := models.ParseProjectStatus(s); ok {
		return status
	}
	return models.ProjectStatus(s)
}

func projectForm(name, description, status, due *string) *huh.Form {
	options := make([]huh.Option[string], 0, len(models.ProjectStatuses))
	for _, s := range models.ProjectStatuses {
		options = append(options, huh.NewOption(s.Label(), string(s)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(name).Validate(requiredInput("name")),
			huh.NewText().Title("Description").Value(description),
			huh.NewSelect[string]().Title("Status").Options(options...).Value(status),
			huh.NewInput().Title("Due Date (YYYY-MM-DD, blank for none)").Placeholder("2025-06-30").Value(due).Validate(optionalDate),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

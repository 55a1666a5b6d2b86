package cli

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/models"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List, create and update tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(app),
		newTasksCreateCmd(app),
		newTasksUpdateCmd(app),
	)

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.client.FetchTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title, description, status, assignee string

	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create a task in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && app.IsInteractive() {
				if status == "" {
					status = string(models.TaskTodo)
				}
				if err := taskForm(&title, &description, &status, &assignee).Run(); err != nil {
					return err
				}
			}

			t, err := app.client.CreateTask(cmd.Context(), client.CreateTaskInput{
				ProjectID:     args[0],
				Title:         title,
				Description:   description,
				Status:        parseTaskStatus(status),
				AssigneeEmail: assignee,
			})
			if err != nil {
				return err
			}
			printCreated(cmd.OutOrStdout(), "task", t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Status: todo, in-progress, done (default todo)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee email")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description, status, assignee string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.UpdateTaskInput{TaskID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("description") {
				in.Description = &description
			}
			if flags.Changed("status") {
				s := parseTaskStatus(status)
				in.Status = &s
			}
			if flags.Changed("assignee") {
				in.AssigneeEmail = &assignee
			}

			t, err := app.client.UpdateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), []models.Task{t})
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee email")
	return cmd
}

func parseTaskStatus(s string) models.TaskStatus {
	if s == "" {
		return ""
	}
	if status, ok := models.ParseTaskStatus(s); ok {
		return status
	}
	return models.TaskStatus(s)
}

func taskForm(title, description, status, assignee *string) *huh.Form {
	options := make([]huh.Option[string], 0, len(models.TaskStatuses))
	for _, s := range models.TaskStatuses {
		options = append(options, huh.NewOption(s.Label(), string(s)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(title).Validate(requiredInput("title")),
			huh.NewText().Title("Description").Value(description),
			huh.NewSelect[string]().Title("Status").Options(options...).Value(status),
			huh.NewInput().Title("Assignee email (optional)").Value(assignee).Validate(optionalEmail),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

package cli

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tgienger/ptrack/internal/client"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment", "c"},
		Short:   "Read and add task comments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <task-id>",
			Short: "Show a task's comments, oldest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				comments, err := app.client.FetchComments(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printComments(cmd.OutOrStdout(), comments)
				return nil
			},
		},
		newCommentsAddCmd(app),
	)

	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" && app.IsInteractive() {
				form := huh.NewForm(huh.NewGroup(
					huh.NewText().Title("Comment").Value(&content).Validate(requiredInput("content")),
				)).WithTheme(huhTheme()).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return err
				}
			}

			c, err := app.client.AddComment(cmd.Context(), client.AddCommentInput{
				TaskID:      args[0],
				Content:     content,
				AuthorEmail: app.cfg.AuthorEmail,
			})
			if err != nil {
				return err
			}
			printCreated(cmd.OutOrStdout(), "comment", c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Comment text")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show task completion for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.client.FetchProjectStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

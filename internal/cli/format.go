package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/ui/styles"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(styles.Current.Primary).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(styles.Current.ForegroundDim)
	styleOK     = lipgloss.NewStyle().Foreground(styles.Current.Success)
)

// renderTable renders an aligned table with a header separator line.
// Columns are padded to the widest visible cell.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return styleHeader.Render(s) })
	for i, w := range widths {
		b.WriteString(styleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

func formatDate(d *models.Date) string {
	if d == nil {
		return styleDim.Render("-")
	}
	return d.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return styleDim.Render("-")
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return styleDim.Render("-")
	}
	return s
}

func printProjects(w io.Writer, projects []models.Project, withTasks bool) {
	if len(projects) == 0 {
		fmt.Fprintln(w, styleDim.Render("No projects yet."))
		return
	}
	headers := []string{"ID", "NAME", "STATUS", "DUE", "CREATED"}
	if withTasks {
		headers = append(headers, "TASKS")
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		row := []string{p.ID, p.Name, styles.ProjectStatusBadge(p.Status), formatDate(p.DueDate), formatTime(p.CreatedAt)}
		if withTasks {
			done := 0
			for _, t := range p.Tasks {
				if t.Status == models.TaskDone {
					done++
				}
			}
			row = append(row, fmt.Sprintf("%d/%d", done, len(p.Tasks)))
		}
		rows = append(rows, row)
	}
	fmt.Fprint(w, renderTable(headers, rows))
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, styleDim.Render("No tasks yet."))
		return
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Title, styles.TaskStatusBadge(t.Status), orDash(t.AssigneeEmail), formatTime(t.CreatedAt)})
	}
	fmt.Fprint(w, renderTable([]string{"ID", "TITLE", "STATUS", "ASSIGNEE", "CREATED"}, rows))
}

func printComments(w io.Writer, comments []models.TaskComment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, styleDim.Render("No comments yet."))
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "%s %s\n%s\n\n", styleHeader.Render(c.AuthorEmail), styleDim.Render(formatTime(c.CreatedAt)), c.Content)
	}
}

func printStats(w io.Writer, s models.ProjectStats) {
	fmt.Fprintf(w, "%s %d/%d done (%.0f%%)\n", styleHeader.Render("Tasks:"), s.CompletedTasks, s.TotalTasks, s.CompletionRate)
}

func printCreated(w io.Writer, kind, id string) {
	fmt.Fprintf(w, "%s %s %s\n", styleOK.Render("✓"), kind, id)
}

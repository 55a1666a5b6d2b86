package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptrack/internal/models"
)

// Theme is the palette every style is derived from
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color

	// Status colors, also used for badges
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

var Current = TokyoNight

// MaxWidth caps the content width on wide terminals
const MaxWidth = 80

func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally once the terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Header strip above lists (project stats, filter state)
	FilterBar lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Failed requests, shown above the view that issued them
	ErrorBanner lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style
}

func NewStyles() *Styles {
	t := Current
	boxed := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().Foreground(t.Foreground).Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		FilterBar: boxed.BorderForeground(t.Border).Padding(0, 1),

		Button: boxed.
			Foreground(t.Foreground).
			BorderForeground(t.Border).
			Padding(0, 2),
		ButtonFocused: boxed.
			Foreground(t.Primary).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		ErrorBanner: boxed.
			Foreground(t.Error).
			BorderForeground(t.Error).
			Padding(0, 1),

		Input:        boxed.Foreground(t.Foreground).BorderForeground(t.Border).Padding(0, 1),
		InputFocused: boxed.Foreground(t.Foreground).BorderForeground(t.BorderFocus).Padding(0, 1),

		Help:    lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
	}
}

// ProjectStatusBadge renders a project status in its theme color
func ProjectStatusBadge(status models.ProjectStatus) string {
	c := Current.ForegroundDim
	switch status {
	case models.ProjectActive:
		c = Current.Primary
	case models.ProjectCompleted:
		c = Current.Success
	case models.ProjectOnHold:
		c = Current.Warning
	}
	return lipgloss.NewStyle().Foreground(c).Render(status.Label())
}

// TaskStatusBadge renders a task status in its theme color. Values the
// client does not know are shown in the error color.
func TaskStatusBadge(status models.TaskStatus) string {
	c := Current.Error
	switch status {
	case models.TaskTodo:
		c = Current.ForegroundDim
	case models.TaskInProgress:
		c = Current.Warning
	case models.TaskDone:
		c = Current.Success
	}
	return lipgloss.NewStyle().Foreground(c).Render(status.Label())
}

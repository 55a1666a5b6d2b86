package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/ui/styles"
)

// huhTheme styles prompts with the TUI palette.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()
	c := styles.Current

	t.Focused.Title = lipgloss.NewStyle().Foreground(c.Primary).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(c.Primary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(c.Success)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(c.Foreground)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(c.Foreground)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(c.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(c.Foreground)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(c.ForegroundDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(c.Error)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(c.ForegroundDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(c.ForegroundDim)

	return t
}

func requiredInput(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func optionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := models.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func optionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s != "" && !strings.Contains(s, "@") {
		return fmt.Errorf("not an email address")
	}
	return nil
}

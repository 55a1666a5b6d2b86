package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/ui/keys"
	"github.com/tgienger/ptrack/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	parts := make([]string, 0, 2)
	if i.project.DueDate != nil {
		parts = append(parts, "due "+i.project.DueDate.String())
	}
	if i.project.Description != "" {
		parts = append(parts, i.project.Description)
	}
	return strings.Join(parts, " · ")
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(p.Title() + "  " + styles.ProjectStatusBadge(p.project.Status))
	desc := descStyle.Render(p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

const (
	projectFieldName = iota
	projectFieldDesc
	projectFieldDue
	projectFieldStatus
	projectFieldSave
	projectFieldCount
)

// ProjectListView lists the organization's projects and edits them
type ProjectListView struct {
	ctx      context.Context
	client   *client.Client
	sub      *cache.Subscription
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	err      error

	// Create/edit form. Inputs survive a failed save.
	editing    bool
	editingID  string // empty while creating
	original   models.Project
	formName   textinput.Model
	formDesc   textinput.Model
	formDue    textinput.Model
	formStatus models.ProjectStatus
	focusIdx   int
	formErr    error
	saving     bool

	showHelpPopup bool
}

func NewProjectListView(ctx context.Context, c *client.Client) *ProjectListView {
	s := styles.NewStyles()

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		ctx:      ctx,
		client:   c,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		formName: newField("Project name", 200),
		formDesc: newField("Description (optional)", 500),
		formDue:  newField("YYYY-MM-DD (optional)", len(models.DateLayout)),
	}
}

// Init starts watching the project list on first use and loads it
func (v *ProjectListView) Init() tea.Cmd {
	if v.sub != nil {
		return v.load(false)
	}
	v.sub = v.client.Watch(client.ProjectsKey())
	return tea.Batch(v.load(false), waitFor(v.sub))
}

// Close stops watching the project list
func (v *ProjectListView) Close() {
	if v.sub != nil {
		v.sub.Close()
	}
}

func (v *ProjectListView) load(force bool) tea.Cmd {
	c, ctx := v.client, v.ctx
	return func() tea.Msg {
		if force {
			if err := c.Refresh(ctx, client.ProjectsKey()); err != nil {
				return projectsLoadedMsg{err: err}
			}
		}
		projects, err := c.FetchProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

type projectsLoadedMsg struct {
	projects []models.Project
	err      error
}

type projectSavedMsg struct {
	project models.Project
	created bool
	err     error
}

type projectStatusMsg struct {
	err error
}

// SelectedProject asks the app to open a project's tasks
type SelectedProject struct {
	Project models.Project
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case changedMsg:
		if v.sub == nil || msg.key != v.sub.Key() {
			return v, nil
		}
		if !shouldReload(v.client, msg.key) {
			res, _ := v.client.State(msg.key)
			v.err = res.Err
			return v, waitFor(v.sub)
		}
		return v, tea.Batch(waitFor(v.sub), v.load(false))

	case projectsLoadedMsg:
		v.loaded = true
		v.err = msg.err
		if msg.err != nil {
			return v, nil
		}
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		return v, v.list.SetItems(items)

	case projectSavedMsg:
		v.saving = false
		if msg.err != nil {
			v.formErr = msg.err
			return v, nil
		}
		v.editing = false
		v.formErr = nil
		if msg.created {
			return v, func() tea.Msg { return SelectedProject{Project: msg.project} }
		}
		return v, nil

	case projectStatusMsg:
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		// Any key dismisses the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		// Let the list own the keyboard while the filter prompt is open
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// Don't quit on escape in project list - only q quits
			if v.list.FilterState() == list.FilterApplied {
				v.list.ResetFilter()
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.startForm(models.Project{Status: models.ProjectActive}, "")
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.startForm(item.project, item.project.ID)
				return v, textinput.Blink
			}
			return v, nil
		case key.Matches(msg, v.keys.Status):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, v.cycleStatus(item.project)
			}
			return v, nil
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load(true)
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// cycleStatus sends a status-only update. The list redraws from the cache
// once the returned payload is merged.
func (v *ProjectListView) cycleStatus(p models.Project) tea.Cmd {
	c, ctx := v.client, v.ctx
	next := p.Status.Next()
	return func() tea.Msg {
		_, err := c.UpdateProject(ctx, client.UpdateProjectInput{ProjectID: p.ID, Status: &next})
		return projectStatusMsg{err: err}
	}
}

func (v *ProjectListView) startForm(p models.Project, id string) {
	v.editing = true
	v.editingID = id
	v.original = p
	v.formErr = nil
	v.focusIdx = projectFieldName
	v.formName.SetValue(p.Name)
	v.formDesc.SetValue(p.Description)
	v.formDue.Reset()
	if p.DueDate != nil {
		v.formDue.SetValue(p.DueDate.String())
	}
	v.formStatus = p.Status
	if !v.formStatus.Valid() {
		v.formStatus = models.ProjectActive
	}
	v.updateFocus()
}

func (v *ProjectListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + projectFieldCount - 1) % projectFieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % projectFieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusIdx {
		case projectFieldStatus:
			v.formStatus = v.formStatus.Next()
		case projectFieldSave:
			return v, v.save()
		default:
			v.focusIdx++
			v.updateFocus()
		}
		return v, nil

	case v.focusIdx == projectFieldStatus && (msg.String() == " " || msg.String() == "right" || msg.String() == "l"):
		v.formStatus = v.formStatus.Next()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case projectFieldName:
		v.formName, cmd = v.formName.Update(msg)
	case projectFieldDesc:
		v.formDesc, cmd = v.formDesc.Update(msg)
	case projectFieldDue:
		v.formDue, cmd = v.formDue.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.formName.Blur()
	v.formDesc.Blur()
	v.formDue.Blur()
	switch v.focusIdx {
	case projectFieldName:
		v.formName.Focus()
	case projectFieldDesc:
		v.formDesc.Focus()
	case projectFieldDue:
		v.formDue.Focus()
	}
}

// save submits the form. Validation errors from the client come back as a
// projectSavedMsg and keep the form open with its inputs.
func (v *ProjectListView) save() tea.Cmd {
	name := strings.TrimSpace(v.formName.Value())
	desc := strings.TrimSpace(v.formDesc.Value())

	var due *models.Date
	if s := strings.TrimSpace(v.formDue.Value()); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			v.formErr = fmt.Errorf("due date must be YYYY-MM-DD")
			return nil
		}
		due = &d
	}

	c, ctx := v.client, v.ctx
	if v.editingID == "" {
		in := client.CreateProjectInput{Name: name, Description: desc, Status: v.formStatus, DueDate: due}
		v.saving = true
		return func() tea.Msg {
			p, err := c.CreateProject(ctx, in)
			return projectSavedMsg{project: p, created: true, err: err}
		}
	}

	in := client.UpdateProjectInput{ProjectID: v.editingID}
	changed := false
	if name != v.original.Name {
		in.Name = &name
		changed = true
	}
	if desc != v.original.Description {
		in.Description = &desc
		changed = true
	}
	if v.formStatus != v.original.Status {
		status := v.formStatus
		in.Status = &status
		changed = true
	}
	if due != nil && (v.original.DueDate == nil || !due.Equal(v.original.DueDate.Time)) {
		in.DueDate = due
		changed = true
	}
	if !changed {
		v.editing = false
		return nil
	}

	v.saving = true
	return func() tea.Msg {
		p, err := c.UpdateProject(ctx, in)
		return projectSavedMsg{project: p, err: err}
	}
}

func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.editing {
		return v.renderForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 && v.err == nil {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	if v.err != nil {
		content = v.renderError(v.err) + "\n" + content
	}
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderError(err error) string {
	width := clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
	return v.styles.ErrorBanner.Width(width).Render(err.Error())
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	inputStyles := make([]lipgloss.Style, projectFieldSave)
	for i := range inputStyles {
		inputStyles[i] = s.Input
	}
	btnStyle := s.Button
	if v.focusIdx == projectFieldSave {
		btnStyle = s.ButtonFocused
	} else {
		inputStyles[v.focusIdx] = s.InputFocused
	}

	title := "New Project"
	button := " Create "
	if v.editingID != "" {
		title = "Edit Project"
		button = " Save "
	}
	if v.saving {
		button = " Saving... "
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{s.Title.Render(title), ""}
	if v.formErr != nil {
		rows = append(rows, s.ErrorBanner.Width(inputWidth).Render(v.formErr.Error()), "")
	}
	rows = append(rows,
		"Name:",
		inputStyles[projectFieldName].Width(inputWidth).Render(v.formName.View()),
		"",
		"Description:",
		inputStyles[projectFieldDesc].Width(inputWidth).Render(v.formDesc.View()),
		"",
		"Due date:",
		inputStyles[projectFieldDue].Width(inputWidth).Render(v.formDue.View()),
		"",
		"Status:",
		inputStyles[projectFieldStatus].Width(inputWidth).Render("◂ "+styles.ProjectStatusBadge(v.formStatus)+" ▸"),
		"",
		btnStyle.Render(button),
		"",
		s.TitleMuted.Render("Tab: next • Space: status • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s status • %s refresh • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("s") + "      cycle status",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

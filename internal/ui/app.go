package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/ui/views"
)

type View int

const (
	ViewProjects View = iota
	ViewTasks
)

// Options configures the application
type Options struct {
	Client *client.Client
	// Settings remembers the last opened project per organization. Nil
	// disables it.
	Settings    *db.DB
	OrgSlug     string
	AuthorEmail string
	Log         *logrus.Entry
}

type App struct {
	ctx         context.Context
	opts        Options
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	width       int
	height      int
}

// NewApp starts on the project list
func NewApp(ctx context.Context, opts Options) *App {
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &App{
		ctx:         ctx,
		opts:        opts,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(ctx, opts.Client),
	}
}

func (a *App) lastProjectKey() string {
	return "last_project:" + a.opts.OrgSlug
}

type reopenMsg struct {
	project models.Project
	found   bool
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.projectList.Init(), a.reopenLastProject)
}

// reopenLastProject looks up the last opened project among the org's
// projects, which also warms the project list cache.
func (a *App) reopenLastProject() tea.Msg {
	if a.opts.Settings == nil {
		return nil
	}
	id, err := a.opts.Settings.GetSetting(a.lastProjectKey())
	if err != nil || id == "" {
		return nil
	}
	projects, err := a.opts.Client.FetchProjects(a.ctx)
	if err != nil {
		return nil
	}
	for _, p := range projects {
		if p.ID == id {
			return reopenMsg{project: p, found: true}
		}
	}
	return reopenMsg{}
}

func (a *App) setLastProject(id string) {
	if a.opts.Settings == nil {
		return
	}
	if err := a.opts.Settings.SetSetting(a.lastProjectKey(), id); err != nil {
		a.opts.Log.WithError(err).Warn("could not save last project")
	}
}

func (a *App) openProject(project models.Project) tea.Cmd {
	if a.taskList != nil {
		a.taskList.Close()
	}
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.ctx, a.opts.Client, project, a.opts.AuthorEmail)

	a.setLastProject(project.ID)

	// The new view has not seen a WindowSizeMsg yet
	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The project list outlives the task view, so it always tracks the size
		a.projectList.Update(msg)

	case reopenMsg:
		if msg.found && a.currentView == ViewProjects {
			return a, a.openProject(msg.project)
		}
		if !msg.found {
			a.setLastProject("")
		}
		return a, nil

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		if a.taskList != nil {
			a.taskList.Close()
			a.taskList = nil
		}
		a.setLastProject("")
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
		// Background results keep the hidden project list current
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var listCmd tea.Cmd
			_, listCmd = a.projectList.Update(msg)
			cmd = tea.Batch(cmd, listCmd)
		}
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	}
	return a.projectList.View()
}

// Close releases the subscriptions held by the views
func (a *App) Close() {
	if a.taskList != nil {
		a.taskList.Close()
	}
	a.projectList.Close()
}

package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/ui/keys"
	"github.com/tgienger/ptrack/internal/ui/styles"
)

const (
	taskFieldTitle = iota
	taskFieldDesc
	taskFieldAssignee
	taskFieldStatus
	taskFieldSave
	taskFieldCount
)

// TaskListView shows a project's tasks, its completion stats and the
// comments of the selected task
type TaskListView struct {
	ctx     context.Context
	client  *client.Client
	project models.Project
	author  string
	tasks   []models.Task
	stats   *models.ProjectStats
	styles  *styles.Styles
	keys    keys.KeyMap

	subTasks    *cache.Subscription
	subStats    *cache.Subscription
	subComments *cache.Subscription

	width  int
	height int

	// UI state
	cursor  int
	scrollY int
	loaded  bool
	err     error

	// Task creation/editing. Inputs survive a failed save.
	editing      bool
	editingID    string // empty while creating
	original     models.Task
	editTitle    textinput.Model
	editDesc     textarea.Model
	editAssignee textinput.Model
	editStatus   models.TaskStatus
	editFocusIdx int
	formErr      error
	saving       bool

	// Task view mode (detail view with comments)
	viewingTask         bool
	viewTaskID          string
	viewTaskComments    []models.TaskComment
	commentsErr         error
	commentInput        textarea.Model
	commentInputFocused bool
	commentErr          error
	posting             bool

	showHelpPopup bool
}

// NewTaskListView creates a new task list view. Comments are posted as
// author.
func NewTaskListView(ctx context.Context, c *client.Client, project models.Project, author string) *TaskListView {
	s := styles.NewStyles()

	return &TaskListView{
		ctx:          ctx,
		client:       c,
		project:      project,
		author:       author,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		editTitle:    newField("Task title", 200),
		editDesc:     newBox("Description", 1000),
		editAssignee: newField("someone@example.com (optional)", 254),
		commentInput: newBox("Write a comment", 2000),
	}
}

// BackToProjects asks the app to show the project list again
type BackToProjects struct{}

// Init watches the project's tasks and stats and loads both
func (v *TaskListView) Init() tea.Cmd {
	v.subTasks = v.client.Watch(client.TasksKey(v.project.ID))
	v.subStats = v.client.Watch(client.ProjectStatsKey(v.project.ID))
	return tea.Batch(
		v.loadTasks(false),
		v.loadStats(false),
		waitFor(v.subTasks),
		waitFor(v.subStats),
	)
}

// Close releases every subscription the view holds
func (v *TaskListView) Close() {
	for _, sub := range []*cache.Subscription{v.subTasks, v.subStats, v.subComments} {
		if sub != nil {
			sub.Close()
		}
	}
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type statsLoadedMsg struct {
	stats models.ProjectStats
	err   error
}

type commentsLoadedMsg struct {
	taskID   string
	comments []models.TaskComment
	err      error
}

type taskSavedMsg struct {
	err error
}

type taskStatusMsg struct {
	err error
}

type commentAddedMsg struct {
	err error
}

func (v *TaskListView) loadTasks(force bool) tea.Cmd {
	c, ctx, id := v.client, v.ctx, v.project.ID
	return func() tea.Msg {
		if force {
			if err := c.Refresh(ctx, client.TasksKey(id)); err != nil {
				return tasksLoadedMsg{err: err}
			}
		}
		tasks, err := c.FetchTasks(ctx, id)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (v *TaskListView) loadStats(force bool) tea.Cmd {
	c, ctx, id := v.client, v.ctx, v.project.ID
	return func() tea.Msg {
		if force {
			if err := c.Refresh(ctx, client.ProjectStatsKey(id)); err != nil {
				return statsLoadedMsg{err: err}
			}
		}
		stats, err := c.FetchProjectStats(ctx, id)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (v *TaskListView) loadComments(taskID string, force bool) tea.Cmd {
	c, ctx := v.client, v.ctx
	return func() tea.Msg {
		if force {
			if err := c.Refresh(ctx, client.TaskCommentsKey(taskID)); err != nil {
				return commentsLoadedMsg{taskID: taskID, err: err}
			}
		}
		comments, err := c.FetchComments(ctx, taskID)
		return commentsLoadedMsg{taskID: taskID, comments: comments, err: err}
	}
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		inputWidth := clamp(contentWidth-10, 20, 50)
		v.editDesc.SetWidth(inputWidth)
		v.commentInput.SetWidth(inputWidth)
		return v, nil

	case changedMsg:
		return v, v.onChange(msg.key)

	case tasksLoadedMsg:
		v.loaded = true
		v.err = msg.err
		if msg.err != nil {
			return v, nil
		}
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case statsLoadedMsg:
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		stats := msg.stats
		v.stats = &stats
		return v, nil

	case commentsLoadedMsg:
		if msg.taskID != v.viewTaskID {
			return v, nil
		}
		v.commentsErr = msg.err
		if msg.err == nil {
			v.viewTaskComments = msg.comments
		}
		return v, nil

	case taskSavedMsg:
		v.saving = false
		if msg.err != nil {
			v.formErr = msg.err
			return v, nil
		}
		v.editing = false
		v.formErr = nil
		return v, nil

	case taskStatusMsg:
		v.err = msg.err
		return v, nil

	case commentAddedMsg:
		v.posting = false
		if msg.err != nil {
			v.commentErr = msg.err
			return v, nil
		}
		v.commentErr = nil
		v.commentInput.Reset()
		v.commentInput.Blur()
		v.commentInputFocused = false
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

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

// onChange re-arms the subscription that fired and re-reads its query
func (v *TaskListView) onChange(k cache.QueryKey) tea.Cmd {
	var sub *cache.Subscription
	var reload tea.Cmd
	switch {
	case v.subTasks != nil && k == v.subTasks.Key():
		sub, reload = v.subTasks, v.loadTasks(false)
	case v.subStats != nil && k == v.subStats.Key():
		sub, reload = v.subStats, v.loadStats(false)
	case v.subComments != nil && k == v.subComments.Key():
		sub, reload = v.subComments, v.loadComments(v.viewTaskID, false)
	default:
		return nil
	}

	if !shouldReload(v.client, k) {
		res, _ := v.client.State(k)
		if sub == v.subComments {
			v.commentsErr = res.Err
		} else {
			v.err = res.Err
		}
		return waitFor(sub)
	}
	return tea.Batch(waitFor(sub), reload)
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			return v, v.openTask(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.startForm(task, task.ID)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startForm(models.Task{Status: models.TaskTodo}, "")
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Status):
		if task, ok := v.selected(); ok {
			return v, v.cycleStatus(task)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, tea.Batch(v.loadTasks(true), v.loadStats(true))

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.commentInputFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.commentInput.Blur()
			v.commentInputFocused = false
			return v, nil
		case key.Matches(msg, v.keys.Save):
			return v, v.submitComment()
		}
		if v.posting {
			return v, nil
		}
		var cmd tea.Cmd
		v.commentInput, cmd = v.commentInput.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		v.closeTask()
		return v, nil

	case key.Matches(msg, v.keys.Comment):
		v.commentInputFocused = true
		return v, v.commentInput.Focus()

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.viewedTask(); ok {
			v.startForm(task, task.ID)
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Status):
		if task, ok := v.viewedTask(); ok {
			return v, v.cycleStatus(task)
		}

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadComments(v.viewTaskID, true)
	}

	return v, nil
}

func (v *TaskListView) openTask(id string) tea.Cmd {
	v.viewingTask = true
	v.viewTaskID = id
	v.viewTaskComments = nil
	v.commentsErr = nil
	v.commentErr = nil
	v.subComments = v.client.Watch(client.TaskCommentsKey(id))
	return tea.Batch(v.loadComments(id, false), waitFor(v.subComments))
}

func (v *TaskListView) closeTask() {
	v.viewingTask = false
	v.viewTaskID = ""
	v.commentInput.Blur()
	v.commentInputFocused = false
	if v.subComments != nil {
		v.subComments.Close()
		v.subComments = nil
	}
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// viewedTask looks the open task up by ID so merged updates show through
func (v *TaskListView) viewedTask() (models.Task, bool) {
	for _, t := range v.tasks {
		if t.ID == v.viewTaskID {
			return t, true
		}
	}
	return models.Task{}, false
}

// cycleStatus sends a status-only update; title and description are left
// untouched on the server and in the cache.
func (v *TaskListView) cycleStatus(task models.Task) tea.Cmd {
	c, ctx := v.client, v.ctx
	next := task.Status.Next()
	return func() tea.Msg {
		_, err := c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: task.ID, Status: &next})
		return taskStatusMsg{err: err}
	}
}

func (v *TaskListView) submitComment() tea.Cmd {
	if v.posting {
		return nil
	}
	c, ctx := v.client, v.ctx
	in := client.AddCommentInput{
		TaskID:      v.viewTaskID,
		Content:     v.commentInput.Value(),
		AuthorEmail: v.author,
	}
	v.posting = true
	return func() tea.Msg {
		_, err := c.AddComment(ctx, in)
		return commentAddedMsg{err: err}
	}
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % taskFieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + taskFieldCount - 1) % taskFieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case taskFieldTitle, taskFieldAssignee:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		case taskFieldStatus:
			v.editStatus = v.editStatus.Next()
			return v, nil
		case taskFieldSave:
			return v, v.saveTask()
		}
		// For the description textarea, let enter pass through for newlines

	case v.editFocusIdx == taskFieldStatus && (msg.String() == " " || msg.String() == "right" || msg.String() == "l"):
		v.editStatus = v.editStatus.Next()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case taskFieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case taskFieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case taskFieldAssignee:
		v.editAssignee, cmd = v.editAssignee.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// visibleItems is how many tasks fit: each is 2 lines + 1 margin
func (v *TaskListView) visibleItems() int {
	availableHeight := max(v.height-12, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) startForm(task models.Task, id string) {
	v.editing = true
	v.editingID = id
	v.original = task
	v.formErr = nil
	v.editFocusIdx = taskFieldTitle
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editAssignee.SetValue(task.AssigneeEmail)
	v.editStatus = task.Status
	if !v.editStatus.Valid() {
		v.editStatus = models.TaskTodo
	}
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editAssignee.Blur()

	switch v.editFocusIdx {
	case taskFieldTitle:
		v.editTitle.Focus()
	case taskFieldDesc:
		v.editDesc.Focus()
	case taskFieldAssignee:
		v.editAssignee.Focus()
	}
}

// saveTask creates or updates the task. Only fields that differ from the
// task being edited are sent.
func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	desc := strings.TrimSpace(v.editDesc.Value())
	assignee := strings.TrimSpace(v.editAssignee.Value())
	c, ctx := v.client, v.ctx

	if v.editingID == "" {
		in := client.CreateTaskInput{
			ProjectID:     v.project.ID,
			Title:         title,
			Description:   desc,
			Status:        v.editStatus,
			AssigneeEmail: assignee,
		}
		v.saving = true
		return func() tea.Msg {
			_, err := c.CreateTask(ctx, in)
			return taskSavedMsg{err: err}
		}
	}

	in := client.UpdateTaskInput{TaskID: v.editingID}
	changed := false
	if title != v.original.Title {
		in.Title = &title
		changed = true
	}
	if desc != v.original.Description {
		in.Description = &desc
		changed = true
	}
	if assignee != v.original.AssigneeEmail {
		in.AssigneeEmail = &assignee
		changed = true
	}
	if v.editStatus != v.original.Status {
		status := v.editStatus
		in.Status = &status
		changed = true
	}
	if !changed {
		v.editing = false
		return nil
	}

	v.saving = true
	return func() tea.Msg {
		_, err := c.UpdateTask(ctx, in)
		return taskSavedMsg{err: err}
	}
}

func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	if v.err != nil {
		b.WriteString(v.renderError(v.err))
		b.WriteString("\n")
	}

	b.WriteString(v.renderTaskList())

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderError(err error) string {
	width := clamp(styles.ContentWidth(v.width)-4, 20, styles.MaxWidth)
	return v.styles.ErrorBanner.Width(width).Render(err.Error())
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	title := s.Title.Render(v.project.Name) + "  " + styles.ProjectStatusBadge(v.project.Status)

	statsLine := s.TitleMuted.Render("Loading stats...")
	if v.stats != nil {
		statsLine = s.TitleMuted.Render(fmt.Sprintf("%d/%d done · %.0f%% complete",
			v.stats.CompletedTasks, v.stats.TotalTasks, v.stats.CompletionRate))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, statsLine)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	meta := styles.TaskStatusBadge(task.Status)
	if task.AssigneeEmail != "" {
		meta += s.TitleMuted.Render(" · " + task.AssigneeEmail)
	}

	itemStyle := s.ListItem.Width(width)
	if selected {
		itemStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		itemStyle.Render(task.Title),
		itemStyle.Render(meta),
	) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	button := " Create "
	if v.editingID != "" {
		formTitle = "Edit Task"
		button = " Save "
	}
	if v.saving {
		button = " Saving... "
	}

	inputStyles := make([]lipgloss.Style, taskFieldSave)
	for i := range inputStyles {
		inputStyles[i] = s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == taskFieldSave {
		btnStyle = s.ButtonFocused
	} else {
		inputStyles[v.editFocusIdx] = s.InputFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{s.Title.Render(formTitle), ""}
	if v.formErr != nil {
		rows = append(rows, s.ErrorBanner.Width(inputWidth).Render(v.formErr.Error()), "")
	}
	rows = append(rows,
		"Title:",
		inputStyles[taskFieldTitle].Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		inputStyles[taskFieldDesc].Render(v.editDesc.View()),
		"",
		"Assignee:",
		inputStyles[taskFieldAssignee].Width(inputWidth).Render(v.editAssignee.View()),
		"",
		"Status:",
		inputStyles[taskFieldStatus].Width(inputWidth).Render("◂ "+styles.TaskStatusBadge(v.editStatus)+" ▸"),
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

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s edit • %s new • %s status • %s refresh • %s back • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("s") + "      cycle status",
		s.HelpKey.Render("r") + "      refresh",
		s.HelpKey.Render("esc") + "    back",
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

func (v *TaskListView) renderTaskView() string {
	task, ok := v.viewedTask()
	if !ok {
		return v.styles.TitleMuted.Render("Task not found. Press esc to go back.")
	}

	s := v.styles
	maxContentWidth := styles.ContentWidth(v.width)

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}
	assignee := task.AssigneeEmail
	if assignee == "" {
		assignee = s.TitleMuted.Render("Unassigned")
	}

	titleStyle := s.Title.MarginBottom(1)
	labelStyle := s.TitleMuted
	textWidth := clamp(maxContentWidth-10, 20, 70)

	v.commentInput.SetWidth(clamp(textWidth, 20, 50))

	var commentsContent string
	switch {
	case v.commentsErr != nil:
		commentsContent = s.ErrorBanner.Width(textWidth).Render(v.commentsErr.Error())
	case len(v.viewTaskComments) == 0:
		commentsContent = s.TitleMuted.Render("No comments yet")
	default:
		var commentLines []string
		for _, comment := range v.viewTaskComments {
			header := comment.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")
			if comment.AuthorEmail != "" {
				header = comment.AuthorEmail + " · " + header
			}
			commentLines = append(commentLines, lipgloss.JoinVertical(lipgloss.Left,
				s.TitleMuted.Render(header),
				lipgloss.NewStyle().Width(textWidth).Render(comment.Content),
			))
		}
		commentsContent = lipgloss.JoinVertical(lipgloss.Left, commentLines...)
	}

	commentInputStyle := s.Input
	if v.commentInputFocused {
		commentInputStyle = s.InputFocused
	}

	var helpText string
	if v.commentInputFocused {
		helpText = s.Help.Render(
			fmt.Sprintf("%s submit • %s cancel",
				s.HelpKey.Render("ctrl+s"),
				s.HelpKey.Render("esc"),
			),
		)
	} else {
		helpText = s.Help.Render(
			fmt.Sprintf("%s edit • %s status • %s comment • %s refresh • %s back",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("s"),
				s.HelpKey.Render("c"),
				s.HelpKey.Render("r"),
				s.HelpKey.Render("esc"),
			),
		)
	}

	rows := []string{
		titleStyle.Render(task.Title),
		"",
		labelStyle.Render("Status"),
		styles.TaskStatusBadge(task.Status),
		"",
		labelStyle.Render("Assignee"),
		assignee,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Comments"),
		commentsContent,
		"",
	}
	if v.err != nil {
		rows = append(rows, v.renderError(v.err), "")
	}
	if v.commentErr != nil {
		rows = append(rows, s.ErrorBanner.Width(textWidth).Render(v.commentErr.Error()))
	}
	rows = append(rows, commentInputStyle.Render(v.commentInput.View()), "", helpText)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

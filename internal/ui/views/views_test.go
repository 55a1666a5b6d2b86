package views

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/logging"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/testutil"
)

func newViewClient(t *testing.T) *client.Client {
	t.Helper()
	srv := testutil.NewDevServer(t)
	return client.New(srv.Client("acme"), cache.NewStore(), logging.Discard())
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain discards a pending change signal
func drain(sub *cache.Subscription) {
	select {
	case <-sub.C():
	default:
	}
}

func requireSignal(t *testing.T, sub *cache.Subscription) {
	t.Helper()
	select {
	case <-sub.C():
	case <-time.After(2 * time.Second):
		t.Fatalf("no change signal for %s", sub.Key())
	}
}

func TestProjectListLoadsFromClient(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	_, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)

	v := NewProjectListView(ctx, c)
	v.Init()
	defer v.Close()
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	v.Update(v.load(false)())

	require.Len(t, v.list.Items(), 1)
	assert.Equal(t, "Launch", v.list.Items()[0].(projectItem).project.Name)
	assert.NoError(t, v.err)
	assert.Contains(t, v.View(), "Launch")
}

func TestProjectFormKeepsInputOnServerError(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	_, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)

	v := NewProjectListView(ctx, c)
	v.Init()
	defer v.Close()

	v.Update(keyPress("n"))
	require.True(t, v.editing)
	v.formName.SetValue("Launch")
	v.formDesc.SetValue("second try")

	cmd := v.save()
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.True(t, v.editing, "form stays open")
	require.Error(t, v.formErr)
	assert.Contains(t, v.formErr.Error(), "already exists")
	assert.Equal(t, "Launch", v.formName.Value())
	assert.Equal(t, "second try", v.formDesc.Value())
}

func TestProjectFormRejectsBadDueDateLocally(t *testing.T) {
	v := NewProjectListView(context.Background(), newViewClient(t))
	v.startForm(models.Project{Status: models.ProjectActive}, "")
	v.formName.SetValue("Launch")
	v.formDue.SetValue("next week")

	assert.Nil(t, v.save())
	assert.Error(t, v.formErr)
	assert.False(t, v.saving)
}

func TestProjectCreateOpensProject(t *testing.T) {
	ctx := context.Background()
	v := NewProjectListView(ctx, newViewClient(t))
	v.Init()
	defer v.Close()

	v.startForm(models.Project{Status: models.ProjectActive}, "")
	v.formName.SetValue("Launch")

	_, cmd := v.Update(v.save()())
	require.NotNil(t, cmd)
	assert.False(t, v.editing)

	selected, ok := cmd().(SelectedProject)
	require.True(t, ok)
	assert.Equal(t, "Launch", selected.Project.Name)
}

func TestTaskStatusCycleRefreshesStats(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	p, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)
	task, err := c.CreateTask(ctx, client.CreateTaskInput{
		ProjectID: p.ID,
		Title:     "Write docs",
		Status:    models.TaskInProgress,
	})
	require.NoError(t, err)

	v := NewTaskListView(ctx, c, p, "dev@example.com")
	v.Init()
	defer v.Close()
	v.Update(v.loadTasks(false)())
	v.Update(v.loadStats(false)())
	require.Len(t, v.tasks, 1)
	require.NotNil(t, v.stats)
	assert.Equal(t, 0, v.stats.CompletedTasks)
	drain(v.subStats)
	drain(v.subTasks)

	_, cmd := v.Update(keyPress("s"))
	require.NotNil(t, cmd)
	v.Update(cmd())
	require.NoError(t, v.err)

	requireSignal(t, v.subStats)
	requireSignal(t, v.subTasks)
	v.Update(v.loadTasks(false)())
	v.Update(v.loadStats(false)())

	assert.Equal(t, models.TaskDone, v.tasks[0].Status)
	assert.Equal(t, task.Title, v.tasks[0].Title, "status-only update keeps the title")
	assert.Equal(t, 1, v.stats.CompletedTasks)
	assert.InDelta(t, 100.0, v.stats.CompletionRate, 0.001)
}

func TestCommentInputSurvivesFailedPost(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	p, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)
	task, err := c.CreateTask(ctx, client.CreateTaskInput{ProjectID: p.ID, Title: "Write docs"})
	require.NoError(t, err)

	v := NewTaskListView(ctx, c, p, "not-an-email")
	v.Init()
	defer v.Close()
	v.Update(v.loadTasks(false)())

	v.openTask(task.ID)
	v.Update(v.loadComments(task.ID, false)())
	v.Update(keyPress("c"))
	require.True(t, v.commentInputFocused)
	v.commentInput.SetValue("Looks good")

	v.Update(v.submitComment()())

	require.Error(t, v.commentErr)
	assert.Equal(t, "Looks good", v.commentInput.Value())
	assert.True(t, v.commentInputFocused)
	assert.Empty(t, v.viewTaskComments)
}

func TestCommentAppearsAfterPost(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	p, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)
	task, err := c.CreateTask(ctx, client.CreateTaskInput{ProjectID: p.ID, Title: "Write docs"})
	require.NoError(t, err)

	v := NewTaskListView(ctx, c, p, "dev@example.com")
	v.Init()
	defer v.Close()
	v.Update(v.loadTasks(false)())

	v.openTask(task.ID)
	v.Update(v.loadComments(task.ID, false)())
	drain(v.subComments)

	v.commentInput.SetValue("Looks good")
	v.Update(v.submitComment()())
	require.NoError(t, v.commentErr)
	assert.Empty(t, v.commentInput.Value())

	requireSignal(t, v.subComments)
	v.Update(v.loadComments(task.ID, false)())
	require.Len(t, v.viewTaskComments, 1)
	assert.Equal(t, "Looks good", v.viewTaskComments[0].Content)
	assert.Equal(t, "dev@example.com", v.viewTaskComments[0].AuthorEmail)
}

func TestChangeAfterFailureDoesNotReload(t *testing.T) {
	c := newViewClient(t)
	key := client.TasksKey("42")

	store := c.Store()
	require.True(t, store.FailQuery(key, store.Next(), errors.New("connection refused")))

	assert.False(t, shouldReload(c, key))
	assert.True(t, shouldReload(c, client.ProjectsKey()))
}

func TestClosingTaskStopsCommentWatch(t *testing.T) {
	ctx := context.Background()
	c := newViewClient(t)
	p, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch"})
	require.NoError(t, err)

	v := NewTaskListView(ctx, c, p, "dev@example.com")
	v.Init()
	defer v.Close()

	v.openTask("42")
	sub := v.subComments
	v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, v.viewingTask)
	assert.Nil(t, v.subComments)
	assert.Nil(t, waitFor(sub)(), "closed subscription ends the wait chain")
}

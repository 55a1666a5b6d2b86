package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/client"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/logging"
	"github.com/tgienger/ptrack/internal/models"
	"github.com/tgienger/ptrack/internal/testutil"
)

func newTestClient(t *testing.T) (*client.Client, *testutil.RecordingDoer) {
	t.Helper()
	srv := testutil.NewDevServer(t)
	doer := testutil.NewRecordingDoer(srv.Client("acme"))
	return client.New(doer, cache.NewStore(), logging.Discard()), doer
}

func mustProject(t *testing.T, c *client.Client, name string) models.Project {
	t.Helper()
	p, err := c.CreateProject(context.Background(), client.CreateProjectInput{Name: name})
	require.NoError(t, err)
	return p
}

func mustTask(t *testing.T, c *client.Client, projectID, title string) models.Task {
	t.Helper()
	task, err := c.CreateTask(context.Background(), client.CreateTaskInput{ProjectID: projectID, Title: title})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }

func TestCreateProjectAppearsInProjectList(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	sub := c.Watch(client.ProjectsKey())
	defer sub.Close()

	projects, err := c.FetchProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	created, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Launch", Status: models.ProjectActive})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjects), "active list is refetched by the mutation")

	projects, err = c.FetchProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Launch", projects[0].Name)
	assert.Equal(t, models.ProjectActive, projects[0].Status)
	assert.Equal(t, created.ID, projects[0].ID)
	assert.Nil(t, projects[0].DueDate)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjects), "fresh list is served from the cache")
}

func TestCreateProjectInactiveListRefetchesOnNextRead(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	_, err := c.FetchProjects(ctx)
	require.NoError(t, err)

	mustProject(t, c, "Launch")
	assert.Equal(t, 1, doer.Calls(graphql.OpGetProjects))

	res, ok := c.State(client.ProjectsKey())
	require.True(t, ok)
	assert.True(t, res.Stale)

	projects, err := c.FetchProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjects))
}

func TestStatusOnlyUpdateKeepsTitle(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	task, err := c.CreateTask(ctx, client.CreateTaskInput{ProjectID: p.ID, Title: "Design", Status: models.TaskTodo})
	require.NoError(t, err)

	tasks, err := c.FetchTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: task.ID, Status: ptr(models.TaskDone)})
	require.NoError(t, err)
	assert.Equal(t, "Design", updated.Title)

	req, ok := doer.Last(graphql.OpUpdateTask)
	require.True(t, ok)
	assert.NotContains(t, req.Variables, "title")
	assert.NotContains(t, req.Variables, "description")

	tasks, err = c.FetchTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskDone, tasks[0].Status)
	assert.Equal(t, "Design", tasks[0].Title)
}

func TestStatusOnlyProjectUpdateMergesIntoLists(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "Alpha", Description: "keep"})
	require.NoError(t, err)
	_, err = c.FetchProjects(ctx)
	require.NoError(t, err)
	calls := doer.Calls(graphql.OpGetProjects)

	_, err = c.UpdateProject(ctx, client.UpdateProjectInput{ProjectID: p.ID, Status: ptr(models.ProjectOnHold)})
	require.NoError(t, err)

	projects, err := c.FetchProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, models.ProjectOnHold, projects[0].Status)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "keep", projects[0].Description)
	assert.Equal(t, calls, doer.Calls(graphql.OpGetProjects))
}

func TestAddCommentAppendsAfterExisting(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	task := mustTask(t, c, p.ID, "Review")

	sub := c.Watch(client.TaskCommentsKey(task.ID))
	defer sub.Close()

	_, err := c.AddComment(ctx, client.AddCommentInput{TaskID: task.ID, Content: "first", AuthorEmail: "x@y.com"})
	require.NoError(t, err)
	comment, err := c.AddComment(ctx, client.AddCommentInput{TaskID: task.ID, Content: "lgtm", AuthorEmail: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, task.ID, comment.TaskID)

	comments, err := c.FetchComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "lgtm", comments[1].Content)
	assert.Equal(t, "a@b.com", comments[1].AuthorEmail)
}

func TestValidationRejectsWithoutRequest(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		call  func() error
		field string
	}{
		{"blank project name", func() error {
			_, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "   "})
			return err
		}, "name"},
		{"unknown project status", func() error {
			_, err := c.CreateProject(ctx, client.CreateProjectInput{Name: "x", Status: "SOMEDAY"})
			return err
		}, "status"},
		{"blank task title", func() error {
			_, err := c.CreateTask(ctx, client.CreateTaskInput{ProjectID: "p", Title: "\t"})
			return err
		}, "title"},
		{"missing project id", func() error {
			_, err := c.CreateTask(ctx, client.CreateTaskInput{Title: "x"})
			return err
		}, "projectId"},
		{"bad assignee", func() error {
			_, err := c.CreateTask(ctx, client.CreateTaskInput{ProjectID: "p", Title: "x", AssigneeEmail: "nobody"})
			return err
		}, "assigneeEmail"},
		{"blank comment", func() error {
			_, err := c.AddComment(ctx, client.AddCommentInput{TaskID: "t", Content: " ", AuthorEmail: "a@b.com"})
			return err
		}, "content"},
		{"missing author", func() error {
			_, err := c.AddComment(ctx, client.AddCommentInput{TaskID: "t", Content: "hi"})
			return err
		}, "authorEmail"},
		{"blank name update", func() error {
			_, err := c.UpdateProject(ctx, client.UpdateProjectInput{ProjectID: "p", Name: ptr("  ")})
			return err
		}, "name"},
		{"empty project update", func() error {
			_, err := c.UpdateProject(ctx, client.UpdateProjectInput{ProjectID: "p"})
			return err
		}, "input"},
		{"empty task update", func() error {
			_, err := c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: "t"})
			return err
		}, "input"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.ErrorIs(t, err, client.ErrValidation)
			var verr *client.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
	assert.Zero(t, doer.Total())
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	mustTask(t, c, p.ID, "Design")
	_, err := c.FetchProjectsWithTasks(ctx)
	require.NoError(t, err)
	_, err = c.FetchTasks(ctx, p.ID)
	require.NoError(t, err)

	before := c.Store().Snapshot()

	doer.Fail(graphql.OpCreateTask, &graphql.TransportError{Op: graphql.OpCreateTask, Err: errors.New("connection reset")})
	_, err = c.CreateTask(ctx, client.CreateTaskInput{ProjectID: p.ID, Title: "Build"})
	require.ErrorIs(t, err, graphql.ErrRequestFailed)
	assert.Equal(t, string(before), string(c.Store().Snapshot()))

	// rejected by the server
	_, err = c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: "does-not-exist", Title: ptr("x")})
	var serverErr *graphql.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, []string{"Task matching query does not exist."}, serverErr.Messages)
	assert.Equal(t, string(before), string(c.Store().Snapshot()))
}

func TestEmptyIDsSkipTheNetwork(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	tasks, err := c.FetchTasks(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	comments, err := c.FetchComments(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, comments)

	stats, err := c.FetchProjectStats(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTasks)

	assert.Zero(t, doer.Total())
}

func TestCreateTaskRefetchesActiveQueriesBeforeReturning(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	mustTask(t, c, p.ID, "One")

	tasksSub := c.Watch(client.TasksKey(p.ID))
	defer tasksSub.Close()
	statsSub := c.Watch(client.ProjectStatsKey(p.ID))
	defer statsSub.Close()

	_, err := c.FetchTasks(ctx, p.ID)
	require.NoError(t, err)
	_, err = c.FetchProjectStats(ctx, p.ID)
	require.NoError(t, err)

	mustTask(t, c, p.ID, "Two")
	assert.Equal(t, 2, doer.Calls(graphql.OpGetTasks))
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjectStats))
	// projectsWithTasks was never watched
	assert.Zero(t, doer.Calls(graphql.OpGetProjectsWithTasks))

	res, ok := c.State(client.TasksKey(p.ID))
	require.True(t, ok)
	assert.True(t, res.Fresh())
	assert.Len(t, res.Refs, 2)

	stats, err := c.FetchProjectStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjectStats))
}

func TestUpdateTaskInvalidatesStats(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	task := mustTask(t, c, p.ID, "One")

	stats, err := c.FetchProjectStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.CompletedTasks)

	_, err = c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: task.ID, Status: ptr(models.TaskDone)})
	require.NoError(t, err)

	res, ok := c.State(client.ProjectStatsKey(p.ID))
	require.True(t, ok)
	assert.True(t, res.Stale)

	stats, err = c.FetchProjectStats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.InDelta(t, 100.0, stats.CompletionRate, 0.001)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjectStats))
}

func TestOlderQueryResponseDoesNotUndoMutation(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	task := mustTask(t, c, p.ID, "Design")

	// The tasks query is answered with the TODO status, then the update lands
	// before that answer reaches the cache.
	doer.Before(graphql.OpGetTasks, func() {
		_, err := c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: task.ID, Status: ptr(models.TaskDone)})
		require.NoError(t, err)
	})

	tasks, err := c.FetchTasks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskDone, tasks[0].Status)
	assert.Equal(t, "Design", tasks[0].Title)
}

func TestSupersededRefetchIsDropped(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")

	// A second refetch is issued and applied while the first is in flight.
	doer.Before(graphql.OpGetTasks, func() {
		mustTask(t, c, p.ID, "Late")
		require.NoError(t, c.Refresh(ctx, client.TasksKey(p.ID)))
	})

	require.NoError(t, c.Refresh(ctx, client.TasksKey(p.ID)))

	res, ok := c.State(client.TasksKey(p.ID))
	require.True(t, ok)
	assert.Len(t, res.Refs, 1, "the older empty answer must not replace the newer one")
	assert.Equal(t, 2, doer.Calls(graphql.OpGetTasks))
}

func TestQueryErrorKeepsPreviousData(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	mustProject(t, c, "Alpha")
	_, err := c.FetchProjects(ctx)
	require.NoError(t, err)

	doer.Fail(graphql.OpGetProjects, &graphql.TransportError{Op: graphql.OpGetProjects, StatusCode: 502, Err: errors.New("bad gateway")})
	err = c.Refresh(ctx, client.ProjectsKey())
	require.ErrorIs(t, err, graphql.ErrRequestFailed)

	res, ok := c.State(client.ProjectsKey())
	require.True(t, ok)
	assert.Error(t, res.Err)
	assert.Len(t, res.Refs, 1)
	assert.False(t, res.Fresh())

	doer.Fail(graphql.OpGetProjects, nil)
	projects, err := c.FetchProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestNewerFailedFetchWinsOverOlderAnswer(t *testing.T) {
	c, doer := newTestClient(t)
	ctx := context.Background()

	mustProject(t, c, "Alpha")
	reset := errors.New("connection reset")

	// A second fetch of the same key is issued and fails while the first
	// answer is still on its way to the cache.
	doer.Before(graphql.OpGetProjects, func() {
		doer.Fail(graphql.OpGetProjects, reset)
		defer doer.Fail(graphql.OpGetProjects, nil)
		require.Error(t, c.Refresh(ctx, client.ProjectsKey()))
	})

	projects, err := c.FetchProjects(ctx)
	require.ErrorIs(t, err, reset)
	assert.Nil(t, projects)

	res, ok := c.State(client.ProjectsKey())
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, reset)
	assert.Equal(t, 2, doer.Calls(graphql.OpGetProjects))
}

func TestCancelledQueryLeavesNoState(t *testing.T) {
	c, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchProjects(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, graphql.ErrRequestFailed)

	_, ok := c.State(client.ProjectsKey())
	assert.False(t, ok)
}

func TestWatchSignalsAfterMutation(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	sub := c.Watch(client.ProjectsKey())
	_, err := c.FetchProjects(ctx)
	require.NoError(t, err)
	<-sub.C()

	mustProject(t, c, "Alpha")

	select {
	case _, ok := <-sub.C():
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("no change signal after mutation")
	}

	sub.Close()
	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestProjectsWithTasksSharesTaskEntities(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	p := mustProject(t, c, "Alpha")
	task := mustTask(t, c, p.ID, "Design")

	projects, err := c.FetchProjectsWithTasks(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Tasks, 1)
	assert.Equal(t, p.ID, projects[0].Tasks[0].ProjectID)

	_, err = c.UpdateTask(ctx, client.UpdateTaskInput{TaskID: task.ID, Title: ptr("Design v2")})
	require.NoError(t, err)

	projects, err = c.FetchProjectsWithTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Design v2", projects[0].Tasks[0].Title)
}

func TestEffectsTable(t *testing.T) {
	cases := map[client.MutationName]client.Policy{
		client.MutationCreateProject:  client.PolicyRefetch,
		client.MutationUpdateProject:  client.PolicyMerge,
		client.MutationCreateTask:     client.PolicyRefetch,
		client.MutationUpdateTask:     client.PolicyMerge,
		client.MutationAddTaskComment: client.PolicyRefetch,
	}
	for name, policy := range cases {
		effect, ok := client.EffectOf(name)
		require.True(t, ok, name)
		assert.Equal(t, policy, effect.Policy, name)
	}

	effect, _ := client.EffectOf(client.MutationUpdateTask)
	assert.Equal(t, []cache.QueryKey{cache.AnyArgs(client.QueryProjectStats)}, effect.Dependents(client.Scope{}))
	assert.Equal(t, []cache.QueryKey{client.ProjectStatsKey("p1")}, effect.Dependents(client.Scope{ProjectID: "p1"}))
}

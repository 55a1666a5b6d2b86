package devserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/testutil"
)

func TestMissingOrgHeader(t *testing.T) {
	srv := testutil.NewDevServer(t)
	gql := srv.Client("")

	_, err := gql.Do(context.Background(), graphql.NewRequest(graphql.OpGetProjects, nil))
	var serverErr *graphql.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, []string{"X-ORG-SLUG header missing"}, serverErr.Messages)
}

func TestUnknownOrgSlug(t *testing.T) {
	srv := testutil.NewDevServer(t)

	_, err := srv.Client("umbrella").Do(context.Background(), graphql.NewRequest(graphql.OpGetProjects, nil))
	var serverErr *graphql.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, []string{"X-ORG-SLUG header missing"}, serverErr.Messages)
}

func TestUnknownOperationIsBadRequest(t *testing.T) {
	srv := testutil.NewDevServer(t)

	body, _ := json.Marshal(map[string]any{"operationName": "dropTables", "query": "mutation dropTables { x }"})
	req, err := http.NewRequest(http.MethodPost, srv.URL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(graphql.OrgHeader, "acme")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAndListScopedToOrganization(t *testing.T) {
	srv := testutil.NewDevServer(t)
	ctx := context.Background()
	acme := srv.Client("acme")

	data, err := acme.Do(ctx, graphql.NewRequest(graphql.OpCreateProject, map[string]any{
		"name":    "Alpha",
		"status":  "ACTIVE",
		"dueDate": "2025-03-01",
	}))
	require.NoError(t, err)

	var created struct {
		CreateProject struct {
			Project struct {
				ID      string  `json:"id"`
				Name    string  `json:"name"`
				DueDate *string `json:"dueDate"`
			} `json:"project"`
		} `json:"createProject"`
	}
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEmpty(t, created.CreateProject.Project.ID)
	require.NotNil(t, created.CreateProject.Project.DueDate)
	assert.Equal(t, "2025-03-01", *created.CreateProject.Project.DueDate)

	data, err = srv.Client("globex").Do(ctx, graphql.NewRequest(graphql.OpGetProjects, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"projects": []}`, string(data))

	_, err = acme.Do(ctx, graphql.NewRequest(graphql.OpCreateProject, map[string]any{"name": "Alpha", "status": "ACTIVE"}))
	assert.ErrorIs(t, err, graphql.ErrRequestFailed)
}

func TestUpdateTaskPartialAndNotFound(t *testing.T) {
	srv := testutil.NewDevServer(t)
	ctx := context.Background()
	acme := srv.Client("acme")

	data, err := acme.Do(ctx, graphql.NewRequest(graphql.OpCreateProject, map[string]any{"name": "Alpha", "status": "ACTIVE"}))
	require.NoError(t, err)
	var project struct {
		CreateProject struct {
			Project struct {
				ID string `json:"id"`
			} `json:"project"`
		} `json:"createProject"`
	}
	require.NoError(t, json.Unmarshal(data, &project))

	data, err = acme.Do(ctx, graphql.NewRequest(graphql.OpCreateTask, map[string]any{
		"projectId":   project.CreateProject.Project.ID,
		"title":       "Write docs",
		"status":      "TODO",
		"description": "all of them",
	}))
	require.NoError(t, err)
	var task struct {
		CreateTask struct {
			Task struct {
				ID string `json:"id"`
			} `json:"task"`
		} `json:"createTask"`
	}
	require.NoError(t, json.Unmarshal(data, &task))

	data, err = acme.Do(ctx, graphql.NewRequest(graphql.OpUpdateTask, map[string]any{
		"taskId": task.CreateTask.Task.ID,
		"status": "DONE",
	}))
	require.NoError(t, err)
	var updated struct {
		UpdateTask struct {
			Task struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Status      string `json:"status"`
			} `json:"task"`
		} `json:"updateTask"`
	}
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "Write docs", updated.UpdateTask.Task.Title)
	assert.Equal(t, "all of them", updated.UpdateTask.Task.Description)
	assert.Equal(t, "DONE", updated.UpdateTask.Task.Status)

	data, err = acme.Do(ctx, graphql.NewRequest(graphql.OpGetProjectStats, map[string]any{"projectId": project.CreateProject.Project.ID}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectStats": {"totalTasks": 1, "completedTasks": 1, "completionRate": 100}}`, string(data))

	_, err = srv.Client("globex").Do(ctx, graphql.NewRequest(graphql.OpUpdateTask, map[string]any{
		"taskId": task.CreateTask.Task.ID,
		"status": "TODO",
	}))
	var serverErr *graphql.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, []string{"Task matching query does not exist."}, serverErr.Messages)
}

func TestInvalidStatusRejected(t *testing.T) {
	srv := testutil.NewDevServer(t)

	_, err := srv.Client("acme").Do(context.Background(), graphql.NewRequest(graphql.OpCreateProject, map[string]any{
		"name":   "Alpha",
		"status": "SOMEDAY",
	}))
	var serverErr *graphql.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Contains(t, serverErr.Messages[0], "not a valid project status")
}

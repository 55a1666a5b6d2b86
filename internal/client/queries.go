package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/models"
)

type queryDef struct {
	op        string
	vars      func(key cache.QueryKey) map[string]any
	normalize func(data json.RawMessage, key cache.QueryKey, b batch) ([]cache.Ref, error)
}

var queryDefs = map[string]queryDef{
	QueryProjects: {
		op:   graphql.OpGetProjects,
		vars: noVars,
		normalize: func(data json.RawMessage, _ cache.QueryKey, b batch) ([]cache.Ref, error) {
			v, err := field(data, "projects")
			if err != nil {
				return nil, err
			}
			return b.list(v, b.project)
		},
	},
	QueryProjectsWithTasks: {
		op:   graphql.OpGetProjectsWithTasks,
		vars: noVars,
		normalize: func(data json.RawMessage, _ cache.QueryKey, b batch) ([]cache.Ref, error) {
			v, err := field(data, "projects")
			if err != nil {
				return nil, err
			}
			return b.list(v, b.project)
		},
	},
	QueryTasks: {
		op:   graphql.OpGetTasks,
		vars: argVars("projectId"),
		normalize: func(data json.RawMessage, key cache.QueryKey, b batch) ([]cache.Ref, error) {
			v, err := field(data, "tasks")
			if err != nil {
				return nil, err
			}
			projectID := key.Arg("projectId")
			return b.list(v, func(o map[string]any) (cache.Ref, error) { return b.task(o, projectID) })
		},
	},
	QueryTaskComments: {
		op:   graphql.OpGetTaskComments,
		vars: argVars("taskId"),
		normalize: func(data json.RawMessage, key cache.QueryKey, b batch) ([]cache.Ref, error) {
			v, err := field(data, "taskComments")
			if err != nil {
				return nil, err
			}
			taskID := key.Arg("taskId")
			return b.list(v, func(o map[string]any) (cache.Ref, error) { return b.comment(o, taskID) })
		},
	},
	QueryProjectStats: {
		op:   graphql.OpGetProjectStats,
		vars: argVars("projectId"),
		normalize: func(data json.RawMessage, key cache.QueryKey, b batch) ([]cache.Ref, error) {
			v, err := field(data, "projectStats")
			if err != nil {
				return nil, err
			}
			projectID := key.Arg("projectId")
			rec := cache.Record{"projectId": projectID}
			if v != nil {
				obj, err := object(v)
				if err != nil {
					return nil, err
				}
				for k, val := range obj {
					rec[k] = val
				}
			}
			ref := cache.Ref{Type: cache.TypeProjectStats, ID: projectID}
			b.add(ref, rec)
			return []cache.Ref{ref}, nil
		},
	},
}

func noVars(cache.QueryKey) map[string]any { return nil }

func argVars(names ...string) func(cache.QueryKey) map[string]any {
	return func(key cache.QueryKey) map[string]any {
		vars := make(map[string]any, len(names))
		for _, n := range names {
			vars[n] = key.Arg(n)
		}
		return vars
	}
}

// FetchProjects returns the organization's projects.
func (c *Client) FetchProjects(ctx context.Context) ([]models.Project, error) {
	items, err := c.load(ctx, ProjectsKey())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Project](items)
}

// FetchProjectsWithTasks returns every project with its tasks embedded.
func (c *Client) FetchProjectsWithTasks(ctx context.Context) ([]models.Project, error) {
	items, err := c.load(ctx, ProjectsWithTasksKey())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Project](items)
}

// FetchTasks returns the tasks of one project. An empty projectID is not an
// error: nothing is requested and the result is empty.
func (c *Client) FetchTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return []models.Task{}, nil
	}
	items, err := c.load(ctx, TasksKey(projectID))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Task](items)
}

// FetchComments returns a task's comments in server order.
func (c *Client) FetchComments(ctx context.Context, taskID string) ([]models.TaskComment, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return []models.TaskComment{}, nil
	}
	items, err := c.load(ctx, TaskCommentsKey(taskID))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.TaskComment](items)
}

// FetchProjectStats returns task completion numbers for a project.
func (c *Client) FetchProjectStats(ctx context.Context, projectID string) (models.ProjectStats, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return models.ProjectStats{}, nil
	}
	items, err := c.load(ctx, ProjectStatsKey(projectID))
	if err != nil {
		return models.ProjectStats{}, err
	}
	var stats models.ProjectStats
	if len(items) > 0 {
		if err := decodeOne(items[0], &stats); err != nil {
			return models.ProjectStats{}, err
		}
	}
	stats.ProjectID = projectID
	return stats, nil
}

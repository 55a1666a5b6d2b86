package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/models"
)

// CreateProjectInput holds the fields of a new project. Status defaults to
// ACTIVE.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	DueDate     *models.Date
}

// UpdateProjectInput changes only the fields that are non-nil.
type UpdateProjectInput struct {
	ProjectID   string
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	DueDate     *models.Date
}

// CreateTaskInput holds the fields of a new task. Status defaults to TODO.
type CreateTaskInput struct {
	ProjectID     string
	Title         string
	Description   string
	Status        models.TaskStatus
	AssigneeEmail string
}

// UpdateTaskInput changes only the fields that are non-nil.
type UpdateTaskInput struct {
	TaskID        string
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	AssigneeEmail *string
}

// AddCommentInput holds a new comment
type AddCommentInput struct {
	TaskID      string
	Content     string
	AuthorEmail string
}

// CreateProject validates the input, creates the project and refetches the
// active project lists.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (models.Project, error) {
	v := newValidator(MutationCreateProject)
	name := v.required("name", in.Name)
	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}
	if !status.Valid() {
		v.fail("status", msgBadStatus)
	}
	if err := v.err(); err != nil {
		return models.Project{}, err
	}

	vars := map[string]any{"name": name, "status": string(status)}
	if desc := trim(in.Description); desc != "" {
		vars["description"] = desc
	}
	if in.DueDate != nil {
		vars["dueDate"] = in.DueDate.String()
	}

	var out models.Project
	err := c.mutate(ctx, MutationCreateProject, vars, Scope{}, payloadProject("createProject"), &out)
	return out, err
}

// UpdateProject sends only the supplied fields.
func (c *Client) UpdateProject(ctx context.Context, in UpdateProjectInput) (models.Project, error) {
	v := newValidator(MutationUpdateProject)
	id := v.required("projectId", in.ProjectID)
	name := v.notBlank("name", in.Name)
	desc := v.trimmed(in.Description)
	if in.Status != nil && !in.Status.Valid() {
		v.fail("status", msgBadStatus)
	}
	if in.Name == nil && in.Description == nil && in.Status == nil && in.DueDate == nil {
		v.fail(inputFieldName, msgNoChanges)
	}
	if err := v.err(); err != nil {
		return models.Project{}, err
	}

	vars := map[string]any{"projectId": id}
	if name != nil {
		vars["name"] = *name
	}
	if desc != nil {
		vars["description"] = *desc
	}
	if in.Status != nil {
		vars["status"] = string(*in.Status)
	}
	if in.DueDate != nil {
		vars["dueDate"] = in.DueDate.String()
	}

	var out models.Project
	err := c.mutate(ctx, MutationUpdateProject, vars, Scope{ProjectID: id}, payloadProject("updateProject"), &out)
	return out, err
}

// CreateTask validates the input, creates the task and refetches the
// project's active task queries.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (models.Task, error) {
	v := newValidator(MutationCreateTask)
	projectID := v.required("projectId", in.ProjectID)
	title := v.required("title", in.Title)
	status := in.Status
	if status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		v.fail("status", msgBadStatus)
	}
	assignee := trim(in.AssigneeEmail)
	v.email("assigneeEmail", assignee)
	if err := v.err(); err != nil {
		return models.Task{}, err
	}

	vars := map[string]any{"projectId": projectID, "title": title, "status": string(status)}
	if desc := trim(in.Description); desc != "" {
		vars["description"] = desc
	}
	if assignee != "" {
		vars["assigneeEmail"] = assignee
	}

	var out models.Task
	err := c.mutate(ctx, MutationCreateTask, vars, Scope{ProjectID: projectID}, payloadTask("createTask", projectID), &out)
	return out, err
}

// UpdateTask sends only the supplied fields.
func (c *Client) UpdateTask(ctx context.Context, in UpdateTaskInput) (models.Task, error) {
	v := newValidator(MutationUpdateTask)
	id := v.required("taskId", in.TaskID)
	title := v.notBlank("title", in.Title)
	desc := v.trimmed(in.Description)
	assignee := v.trimmed(in.AssigneeEmail)
	if assignee != nil {
		v.email("assigneeEmail", *assignee)
	}
	if in.Status != nil && !in.Status.Valid() {
		v.fail("status", msgBadStatus)
	}
	if in.Title == nil && in.Description == nil && in.Status == nil && in.AssigneeEmail == nil {
		v.fail(inputFieldName, msgNoChanges)
	}
	if err := v.err(); err != nil {
		return models.Task{}, err
	}

	vars := map[string]any{"taskId": id}
	if title != nil {
		vars["title"] = *title
	}
	if desc != nil {
		vars["description"] = *desc
	}
	if in.Status != nil {
		vars["status"] = string(*in.Status)
	}
	if assignee != nil {
		vars["assigneeEmail"] = *assignee
	}

	// the payload does not name the project, so take it from the cache
	scope := Scope{TaskID: id, ProjectID: c.cachedString(cache.Ref{Type: cache.TypeTask, ID: id}, "projectId")}

	var out models.Task
	err := c.mutate(ctx, MutationUpdateTask, vars, scope, payloadTask("updateTask", scope.ProjectID), &out)
	return out, err
}

// AddComment posts a comment and refetches the task's active comment list.
func (c *Client) AddComment(ctx context.Context, in AddCommentInput) (models.TaskComment, error) {
	v := newValidator(MutationAddTaskComment)
	taskID := v.required("taskId", in.TaskID)
	content := v.required("content", in.Content)
	author := v.required("authorEmail", in.AuthorEmail)
	v.email("authorEmail", author)
	if err := v.err(); err != nil {
		return models.TaskComment{}, err
	}

	vars := map[string]any{"taskId": taskID, "content": content, "authorEmail": author}

	var out models.TaskComment
	err := c.mutate(ctx, MutationAddTaskComment, vars, Scope{TaskID: taskID}, payloadComment(taskID), &out)
	return out, err
}

type extractor func(data json.RawMessage, b batch) (cache.Ref, error)

// mutate sends the mutation and, only once it has succeeded, merges the
// payload and applies the mutation's declared effect. Nothing touches the
// store on failure.
func (c *Client) mutate(ctx context.Context, name MutationName, vars map[string]any, scope Scope, extract extractor, out any) error {
	log := c.log.WithField("mutation", string(name))

	data, err := c.gql.Do(ctx, graphql.NewRequest(string(name), vars))
	if err != nil {
		return err
	}

	b := batch{}
	ref, err := extract(data, b)
	if err != nil {
		return &graphql.TransportError{Op: string(name), Err: err}
	}

	c.store.ApplyPayload(b)

	effect := effects[name]
	deps := effect.Dependents(scope)
	stale := c.store.Invalidate(deps...)
	log.WithFields(map[string]any{
		"policy":      effect.Policy.String(),
		"invalidated": len(stale),
	}).Debug("mutation applied")

	if effect.Policy == PolicyRefetch {
		for _, key := range c.store.ActiveKeys(deps...) {
			if err := c.refresh(ctx, key); err != nil {
				// the mutation itself succeeded; the key stays stale and
				// carries the error for its consumer
				log.WithError(err).WithField("query", key.String()).Warn("refetch after mutation failed")
			}
		}
	}

	resolved := c.store.Resolve([]cache.Ref{ref})
	if len(resolved) == 0 {
		return fmt.Errorf("%s: payload entity %s missing from cache", name, ref)
	}
	return decodeOne(resolved[0], out)
}

func payloadProject(root string) extractor {
	return func(data json.RawMessage, b batch) (cache.Ref, error) {
		v, err := field(data, root, "project")
		if err != nil {
			return cache.Ref{}, err
		}
		obj, err := object(v)
		if err != nil {
			return cache.Ref{}, err
		}
		return b.project(obj)
	}
}

func payloadTask(root, projectID string) extractor {
	return func(data json.RawMessage, b batch) (cache.Ref, error) {
		v, err := field(data, root, "task")
		if err != nil {
			return cache.Ref{}, err
		}
		obj, err := object(v)
		if err != nil {
			return cache.Ref{}, err
		}
		return b.task(obj, projectID)
	}
}

func payloadComment(taskID string) extractor {
	return func(data json.RawMessage, b batch) (cache.Ref, error) {
		v, err := field(data, "addTaskComment", "comment")
		if err != nil {
			return cache.Ref{}, err
		}
		obj, err := object(v)
		if err != nil {
			return cache.Ref{}, err
		}
		return b.comment(obj, taskID)
	}
}

func (c *Client) cachedString(ref cache.Ref, name string) string {
	rec, ok := c.store.Entity(ref)
	if !ok {
		return ""
	}
	s, _ := rec[name].(string)
	return s
}

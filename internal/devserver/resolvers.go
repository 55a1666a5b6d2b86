package devserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/models"
)

type resolver func(org *models.Organization, vars map[string]any) (gin.H, error)

// userError carries a message that is safe to return verbatim
type userError struct {
	msg string
}

func (e *userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

func publicMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	return "Internal server error"
}

func lookupError(entity string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return userErrorf("%s matching query does not exist.", entity)
	}
	return err
}

func required(vars map[string]any, name, typ string) (string, error) {
	v, ok := vars[name].(string)
	if !ok {
		return "", userErrorf("Variable '$%s' of required type '%s' was not provided.", name, typ)
	}
	return v, nil
}

// optional returns nil when the variable is absent or null
func optional(vars map[string]any, name string) (*string, error) {
	raw, ok := vars[name]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(string)
	if !ok {
		return nil, userErrorf("Variable '$%s' got invalid value %v.", name, raw)
	}
	return &v, nil
}

func projectStatus(s string) (models.ProjectStatus, error) {
	status := models.ProjectStatus(s)
	if !status.Valid() {
		return "", userErrorf("%q is not a valid project status.", s)
	}
	return status, nil
}

func taskStatus(s string) (models.TaskStatus, error) {
	status := models.TaskStatus(s)
	if !status.Valid() {
		return "", userErrorf("%q is not a valid task status.", s)
	}
	return status, nil
}

func dueDate(vars map[string]any) (*models.Date, error) {
	s, err := optional(vars, "dueDate")
	if err != nil || s == nil || *s == "" {
		return nil, err
	}
	d, err := models.ParseDate(*s)
	if err != nil {
		return nil, userErrorf("Variable '$dueDate' got invalid value %q.", *s)
	}
	return &d, nil
}

func projectJSON(p models.Project) gin.H {
	var due any
	if p.DueDate != nil {
		due = p.DueDate.String()
	}
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"status":      p.Status,
		"dueDate":     due,
		"createdAt":   p.CreatedAt,
	}
}

func taskJSON(t models.Task) gin.H {
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	return gin.H{
		"id":            t.ID,
		"title":         t.Title,
		"description":   t.Description,
		"status":        t.Status,
		"assigneeEmail": t.AssigneeEmail,
		"dueDate":       due,
		"createdAt":     t.CreatedAt,
	}
}

func commentJSON(c models.TaskComment) gin.H {
	return gin.H{
		"id":          c.ID,
		"content":     c.Content,
		"authorEmail": c.AuthorEmail,
		"createdAt":   c.CreatedAt,
	}
}

func (s *Server) resolveProjects(org *models.Organization, _ map[string]any) (gin.H, error) {
	projects, err := s.db.ListProjects(org.ID)
	if err != nil {
		return nil, err
	}
	out := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON(p))
	}
	return gin.H{"projects": out}, nil
}

func (s *Server) resolveProjectsWithTasks(org *models.Organization, _ map[string]any) (gin.H, error) {
	projects, err := s.db.ListProjectsWithTasks(org.ID)
	if err != nil {
		return nil, err
	}
	out := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		tasks := make([]gin.H, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			tasks = append(tasks, taskJSON(t))
		}
		h := projectJSON(p)
		h["tasks"] = tasks
		out = append(out, h)
	}
	return gin.H{"projects": out}, nil
}

func (s *Server) resolveTasks(org *models.Organization, vars map[string]any) (gin.H, error) {
	projectID, err := required(vars, "projectId", "ID!")
	if err != nil {
		return nil, err
	}
	tasks, err := s.db.ListTasks(org.ID, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON(t))
	}
	return gin.H{"tasks": out}, nil
}

func (s *Server) resolveTaskComments(org *models.Organization, vars map[string]any) (gin.H, error) {
	taskID, err := required(vars, "taskId", "ID!")
	if err != nil {
		return nil, err
	}
	comments, err := s.db.GetTaskComments(org.ID, taskID)
	if err != nil {
		return nil, err
	}
	out := make([]gin.H, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentJSON(c))
	}
	return gin.H{"taskComments": out}, nil
}

func (s *Server) resolveProjectStats(org *models.Organization, vars map[string]any) (gin.H, error) {
	projectID, err := required(vars, "projectId", "ID!")
	if err != nil {
		return nil, err
	}
	stats, err := s.db.ProjectStats(org.ID, projectID)
	if err != nil {
		return nil, err
	}
	return gin.H{"projectStats": gin.H{
		"totalTasks":     stats.TotalTasks,
		"completedTasks": stats.CompletedTasks,
		"completionRate": stats.CompletionRate,
	}}, nil
}

func (s *Server) createProject(org *models.Organization, vars map[string]any) (gin.H, error) {
	name, err := required(vars, "name", "String!")
	if err != nil {
		return nil, err
	}
	rawStatus, err := required(vars, "status", "String!")
	if err != nil {
		return nil, err
	}
	status, err := projectStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	desc, err := optional(vars, "description")
	if err != nil {
		return nil, err
	}
	due, err := dueDate(vars)
	if err != nil {
		return nil, err
	}

	var description string
	if desc != nil {
		description = *desc
	}
	p, err := s.db.CreateProject(org.ID, strings.TrimSpace(name), description, status, due)
	if errors.Is(err, db.ErrDuplicateName) {
		return nil, userErrorf("Project with this Organization and Name already exists.")
	}
	if err != nil {
		return nil, err
	}
	return gin.H{"createProject": gin.H{"project": projectJSON(*p)}}, nil
}

func (s *Server) updateProject(org *models.Organization, vars map[string]any) (gin.H, error) {
	projectID, err := required(vars, "projectId", "ID!")
	if err != nil {
		return nil, err
	}

	var patch db.ProjectPatch
	if patch.Name, err = optional(vars, "name"); err != nil {
		return nil, err
	}
	if patch.Description, err = optional(vars, "description"); err != nil {
		return nil, err
	}
	rawStatus, err := optional(vars, "status")
	if err != nil {
		return nil, err
	}
	if rawStatus != nil {
		status, err := projectStatus(*rawStatus)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	if patch.DueDate, err = dueDate(vars); err != nil {
		return nil, err
	}

	p, err := s.db.UpdateProject(org.ID, projectID, patch)
	if errors.Is(err, db.ErrDuplicateName) {
		return nil, userErrorf("Project with this Organization and Name already exists.")
	}
	if err != nil {
		return nil, lookupError("Project", err)
	}
	return gin.H{"updateProject": gin.H{"project": projectJSON(*p)}}, nil
}

func (s *Server) createTask(org *models.Organization, vars map[string]any) (gin.H, error) {
	projectID, err := required(vars, "projectId", "ID!")
	if err != nil {
		return nil, err
	}
	title, err := required(vars, "title", "String!")
	if err != nil {
		return nil, err
	}
	rawStatus, err := required(vars, "status", "String!")
	if err != nil {
		return nil, err
	}
	status, err := taskStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	desc, err := optional(vars, "description")
	if err != nil {
		return nil, err
	}
	assignee, err := optional(vars, "assigneeEmail")
	if err != nil {
		return nil, err
	}

	var description, email string
	if desc != nil {
		description = *desc
	}
	if assignee != nil {
		email = *assignee
	}
	t, err := s.db.CreateTask(org.ID, projectID, title, description, status, email)
	if err != nil {
		return nil, lookupError("Project", err)
	}
	return gin.H{"createTask": gin.H{"task": taskJSON(*t)}}, nil
}

func (s *Server) updateTask(org *models.Organization, vars map[string]any) (gin.H, error) {
	taskID, err := required(vars, "taskId", "ID!")
	if err != nil {
		return nil, err
	}

	var patch db.TaskPatch
	if patch.Title, err = optional(vars, "title"); err != nil {
		return nil, err
	}
	if patch.Description, err = optional(vars, "description"); err != nil {
		return nil, err
	}
	if patch.AssigneeEmail, err = optional(vars, "assigneeEmail"); err != nil {
		return nil, err
	}
	rawStatus, err := optional(vars, "status")
	if err != nil {
		return nil, err
	}
	if rawStatus != nil {
		status, err := taskStatus(*rawStatus)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}

	t, err := s.db.UpdateTask(org.ID, taskID, patch)
	if err != nil {
		return nil, lookupError("Task", err)
	}
	return gin.H{"updateTask": gin.H{"task": taskJSON(*t)}}, nil
}

func (s *Server) addTaskComment(org *models.Organization, vars map[string]any) (gin.H, error) {
	taskID, err := required(vars, "taskId", "ID!")
	if err != nil {
		return nil, err
	}
	content, err := required(vars, "content", "String!")
	if err != nil {
		return nil, err
	}
	author, err := required(vars, "authorEmail", "String!")
	if err != nil {
		return nil, err
	}

	c, err := s.db.CreateComment(org.ID, taskID, content, author)
	if err != nil {
		return nil, lookupError("Task", err)
	}
	return gin.H{"addTaskComment": gin.H{"comment": commentJSON(*c)}}, nil
}

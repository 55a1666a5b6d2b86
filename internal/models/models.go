package models

import "time"

// Organization is the tenant every project belongs to
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Project represents a project owned by an organization
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	DueDate     *Date         `json:"dueDate"`
	CreatedAt   time.Time     `json:"createdAt"`
	Tasks       []Task        `json:"tasks,omitempty"` // populated by the projects-with-tasks query
}

// Task represents a single task inside a project
type Task struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"projectId,omitempty"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        TaskStatus    `json:"status"`
	AssigneeEmail string        `json:"assigneeEmail"`
	DueDate       *time.Time    `json:"dueDate"`
	CreatedAt     time.Time     `json:"createdAt"`
	Comments      []TaskComment `json:"comments,omitempty"`
}

// TaskComment represents a comment on a task
type TaskComment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId,omitempty"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProjectStats summarizes task completion for a project
type ProjectStats struct {
	ProjectID      string  `json:"projectId,omitempty"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
}

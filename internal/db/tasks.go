package db

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/tgienger/ptrack/internal/models"
)

// TaskPatch holds the fields of a partial task update. Nil fields are left
// unchanged.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	AssigneeEmail *string
}

const taskColumns = `t.id, t.project_id, t.title, t.description, t.status, t.assignee_email, t.due_date, t.created_at`

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullTime
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.AssigneeEmail, &due, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return t, nil
}

// CreateTask creates a new task in one of the organization's projects
func (db *DB) CreateTask(orgID, projectID, title, description string, status models.TaskStatus, assignee string) (*models.Task, error) {
	if _, err := db.GetProject(orgID, projectID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO tasks (id, project_id, title, description, status, assignee_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, projectID, title, description, status, assignee, db.now())
	if err != nil {
		return nil, err
	}

	return db.GetTask(orgID, id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(orgID, id string) (*models.Task, error) {
	t, err := scanTask(db.QueryRow(`
		SELECT `+taskColumns+`
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.id = ? AND p.organization_id = ?
	`, id, orgID))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// ListTasks returns all tasks for a project, newest first
func (db *DB) ListTasks(orgID, projectID string) ([]models.Task, error) {
	rows, err := db.Query(`
		SELECT `+taskColumns+`
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.project_id = ? AND p.organization_id = ?
		ORDER BY t.created_at DESC, t.rowid DESC
	`, projectID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies the non-nil fields of patch
func (db *DB) UpdateTask(orgID, id string, patch TaskPatch) (*models.Task, error) {
	if _, err := db.GetTask(orgID, id); err != nil {
		return nil, err
	}

	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.AssigneeEmail != nil {
		set.add("assignee_email", *patch.AssigneeEmail)
	}

	if !set.empty() {
		args := append(set.args, id)
		if _, err := db.Exec(`UPDATE tasks SET `+strings.Join(set.cols, ", ")+` WHERE id = ?`, args...); err != nil {
			return nil, err
		}
	}

	return db.GetTask(orgID, id)
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(orgID, id string) error {
	if _, err := db.GetTask(orgID, id); err != nil {
		return err
	}
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

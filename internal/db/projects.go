package db

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/tgienger/ptrack/internal/models"
)

// ProjectPatch holds the fields of a partial project update. Nil fields are
// left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	DueDate     *models.Date
}

const projectColumns = `id, name, description, status, due_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var due sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &due, &p.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid && due.String != "" {
		d, err := models.ParseDate(due.String)
		if err != nil {
			return nil, err
		}
		p.DueDate = &d
	}
	return p, nil
}

func dateValue(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// CreateProject creates a new project in the organization
func (db *DB) CreateProject(orgID, name, description string, status models.ProjectStatus, due *models.Date) (*models.Project, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO projects (id, organization_id, name, description, status, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, orgID, name, description, status, dateValue(due), db.now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	return db.GetProject(orgID, id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(orgID, id string) (*models.Project, error) {
	p, err := scanProject(db.QueryRow(`
		SELECT `+projectColumns+`
		FROM projects WHERE id = ? AND organization_id = ?
	`, id, orgID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ListProjects returns the organization's projects, newest first
func (db *DB) ListProjects(orgID string) ([]models.Project, error) {
	rows, err := db.Query(`
		SELECT `+projectColumns+`
		FROM projects WHERE organization_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListProjectsWithTasks returns the organization's projects with their tasks
// attached
func (db *DB) ListProjectsWithTasks(orgID string) ([]models.Project, error) {
	projects, err := db.ListProjects(orgID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		tasks, err := db.ListTasks(orgID, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Tasks = tasks
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of patch
func (db *DB) UpdateProject(orgID, id string, patch ProjectPatch) (*models.Project, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.DueDate != nil {
		set.add("due_date", patch.DueDate.String())
	}

	if !set.empty() {
		args := append(set.args, id, orgID)
		res, err := db.Exec(`
			UPDATE projects SET `+strings.Join(set.cols, ", ")+`
			WHERE id = ? AND organization_id = ?
		`, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateName
			}
			return nil, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return db.GetProject(orgID, id)
}

// DeleteProject deletes a project and all its tasks
func (db *DB) DeleteProject(orgID, id string) error {
	_, err := db.Exec("DELETE FROM projects WHERE id = ? AND organization_id = ?", id, orgID)
	return err
}

// ProjectStats counts the project's tasks and how many are done. The rate is
// a percentage.
func (db *DB) ProjectStats(orgID, projectID string) (models.ProjectStats, error) {
	stats := models.ProjectStats{ProjectID: projectID}
	err := db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0)
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.project_id = ? AND p.organization_id = ?
	`, models.TaskDone, projectID, orgID).Scan(&stats.TotalTasks, &stats.CompletedTasks)
	if err != nil {
		return stats, err
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	return stats, nil
}

package db

import (
	"github.com/google/uuid"
	"github.com/tgienger/ptrack/internal/models"
)

const commentColumns = `c.id, c.task_id, c.content, c.author_email, c.created_at`

func scanComment(row rowScanner) (*models.TaskComment, error) {
	c := &models.TaskComment{}
	if err := row.Scan(&c.ID, &c.TaskID, &c.Content, &c.AuthorEmail, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateComment creates a new comment on a task
func (db *DB) CreateComment(orgID, taskID, content, author string) (*models.TaskComment, error) {
	if _, err := db.GetTask(orgID, taskID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO comments (id, task_id, content, author_email, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, taskID, content, author, db.now())
	if err != nil {
		return nil, err
	}

	return scanComment(db.QueryRow(`
		SELECT `+commentColumns+` FROM comments c WHERE c.id = ?
	`, id))
}

// GetTaskComments retrieves all comments for a task, ordered by creation time (oldest first)
func (db *DB) GetTaskComments(orgID, taskID string) ([]models.TaskComment, error) {
	rows, err := db.Query(`
		SELECT `+commentColumns+`
		FROM comments c
		JOIN tasks t ON t.id = c.task_id
		JOIN projects p ON p.id = t.project_id
		WHERE c.task_id = ? AND p.organization_id = ?
		ORDER BY c.created_at ASC, c.rowid ASC
	`, taskID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.TaskComment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

package db

import (
	"github.com/google/uuid"
	"github.com/tgienger/ptrack/internal/models"
)

// SeedOrgs are the organizations created by SeedOrganizations
var SeedOrgs = []models.Organization{
	{Name: "Acme Corporation", Slug: "acme", ContactEmail: "contact@acme.com"},
	{Name: "Globex Inc", Slug: "globex", ContactEmail: "hello@globex.com"},
	{Name: "Initech", Slug: "initech", ContactEmail: "support@initech.com"},
}

// SeedOrganizations inserts the built-in organizations, leaving existing
// slugs untouched
func (db *DB) SeedOrganizations() error {
	for _, org := range SeedOrgs {
		_, err := db.Exec(`
			INSERT INTO organizations (id, name, slug, contact_email, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(slug) DO NOTHING
		`, uuid.NewString(), org.Name, org.Slug, org.ContactEmail, db.now())
		if err != nil {
			return err
		}
	}
	return nil
}

// GetOrganizationBySlug looks up an organization by its slug
func (db *DB) GetOrganizationBySlug(slug string) (*models.Organization, error) {
	o := &models.Organization{}
	err := db.QueryRow(`
		SELECT id, name, slug, contact_email, created_at
		FROM organizations WHERE slug = ?
	`, slug).Scan(&o.ID, &o.Name, &o.Slug, &o.ContactEmail, &o.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

// ListOrganizations returns all organizations ordered by name
func (db *DB) ListOrganizations() ([]models.Organization, error) {
	rows, err := db.Query(`
		SELECT id, name, slug, contact_email, created_at
		FROM organizations ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.ContactEmail, &o.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// InstitutionRepository handles database operations for institutions
type InstitutionRepository struct {
	db *sql.DB
}

// NewInstitutionRepository creates a new institution repository
func NewInstitutionRepository(db *sql.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// CreateInstitution inserts a new institution and sets its id.
func (r *InstitutionRepository) CreateInstitution(inst *models.Institution) error {
	query := `INSERT INTO institutions (name, domain) VALUES (?, ?)`
	result, err := r.db.Exec(query, inst.Name, inst.Domain)
	if err != nil {
		return fmt.Errorf("failed to create institution: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get institution ID: %w", err)
	}
	inst.InstitutionID = id
	return nil
}

// GetInstitutionByID retrieves one institution.
func (r *InstitutionRepository) GetInstitutionByID(id int64) (*models.Institution, error) {
	query := `SELECT institution_id, name, domain, created_at FROM institutions WHERE institution_id = ?`
	var inst models.Institution
	err := r.db.QueryRow(query, id).Scan(&inst.InstitutionID, &inst.Name, &inst.Domain, &inst.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("institution not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query institution: %w", err)
	}
	return &inst, nil
}

// ListInstitutions retrieves all institutions ordered by name.
func (r *InstitutionRepository) ListInstitutions() ([]models.Institution, error) {
	query := `SELECT institution_id, name, domain, created_at FROM institutions ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query institutions: %w", err)
	}
	defer rows.Close()

	var institutions []models.Institution
	for rows.Next() {
		var inst models.Institution
		if err := rows.Scan(&inst.InstitutionID, &inst.Name, &inst.Domain, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan institution: %w", err)
		}
		institutions = append(institutions, inst)
	}
	return institutions, rows.Err()
}

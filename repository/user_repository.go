package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// UserRepository reads the identity provider's user directory. The engine
// needs it for notification recipients and admin lookups only; user
// lifecycle is owned elsewhere.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, full_name, role, institution_id, is_active`

// GetUserByID retrieves one user.
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	var u models.User
	err := r.db.QueryRow(query, id).Scan(
		&u.UserID, &u.Email, &u.FullName, &u.Role, &u.InstitutionID, &u.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// ListActiveAdmins retrieves active admin users. When institutionID is
// non-nil, admins of that institution are preferred but global admins
// (no institution) are included too.
func (r *UserRepository) ListActiveAdmins(institutionID *int64) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE role = ? AND is_active = TRUE
		  AND (institution_id IS NULL OR ? IS NULL OR institution_id = ?)
		ORDER BY user_id
	`
	var arg sql.NullInt64
	if institutionID != nil {
		arg = sql.NullInt64{Int64: *institutionID, Valid: true}
	}
	rows, err := r.db.Query(query, models.RoleAdmin, arg, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.UserID, &u.Email, &u.FullName, &u.Role, &u.InstitutionID, &u.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}

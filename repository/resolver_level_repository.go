package repository

import (
	"database/sql"
	"fmt"
	"time"

	"cmfs/models"
)

// ResolverLevelRepository handles database operations for resolver levels
type ResolverLevelRepository struct {
	db *sql.DB
}

// NewResolverLevelRepository creates a new resolver level repository
func NewResolverLevelRepository(db *sql.DB) *ResolverLevelRepository {
	return &ResolverLevelRepository{db: db}
}

const levelColumns = `level_id, institution_id, name, level_order, escalation_time_seconds`

func scanLevel(row interface{ Scan(...interface{}) error }) (*models.ResolverLevel, error) {
	var level models.ResolverLevel
	var seconds int64
	err := row.Scan(&level.LevelID, &level.InstitutionID, &level.Name, &level.LevelOrder, &seconds)
	if err != nil {
		return nil, err
	}
	level.EscalationTime = time.Duration(seconds) * time.Second
	return &level, nil
}

// CreateLevel inserts a new resolver level and sets its id.
func (r *ResolverLevelRepository) CreateLevel(level *models.ResolverLevel) error {
	query := `
		INSERT INTO resolver_levels (institution_id, name, level_order, escalation_time_seconds)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, level.InstitutionID, level.Name, level.LevelOrder, int64(level.EscalationTime.Seconds()))
	if err != nil {
		return fmt.Errorf("failed to create resolver level: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get level ID: %w", err)
	}
	level.LevelID = id
	return nil
}

// GetLevelByID retrieves one resolver level.
func (r *ResolverLevelRepository) GetLevelByID(id int64) (*models.ResolverLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM resolver_levels WHERE level_id = ?`
	level, err := scanLevel(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resolver level not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resolver level: %w", err)
	}
	return level, nil
}

// GetFirstLevel retrieves the institution's level with level_order = 1,
// or nil when the institution has no explicit first level.
func (r *ResolverLevelRepository) GetFirstLevel(institutionID int64) (*models.ResolverLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM resolver_levels WHERE institution_id = ? AND level_order = 1`
	level, err := scanLevel(r.db.QueryRow(query, institutionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query first level: %w", err)
	}
	return level, nil
}

// GetAnyFirstLevel retrieves any level with level_order = 1 regardless of
// institution. Defensive fallback for complaints without an institution.
func (r *ResolverLevelRepository) GetAnyFirstLevel() (*models.ResolverLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM resolver_levels WHERE level_order = 1 ORDER BY level_id LIMIT 1`
	level, err := scanLevel(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query first level: %w", err)
	}
	return level, nil
}

// GetLowestLevel retrieves the institution's level with the smallest
// level_order, or nil when the institution has no levels at all.
func (r *ResolverLevelRepository) GetLowestLevel(institutionID int64) (*models.ResolverLevel, error) {
	query := `
		SELECT ` + levelColumns + ` FROM resolver_levels
		WHERE institution_id = ? ORDER BY level_order ASC LIMIT 1
	`
	level, err := scanLevel(r.db.QueryRow(query, institutionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lowest level: %w", err)
	}
	return level, nil
}

// GetNextLevel retrieves the institution's level with the smallest
// level_order strictly greater than currentOrder, or nil at the ceiling.
func (r *ResolverLevelRepository) GetNextLevel(institutionID int64, currentOrder int) (*models.ResolverLevel, error) {
	query := `
		SELECT ` + levelColumns + ` FROM resolver_levels
		WHERE institution_id = ? AND level_order > ?
		ORDER BY level_order ASC LIMIT 1
	`
	level, err := scanLevel(r.db.QueryRow(query, institutionID, currentOrder))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query next level: %w", err)
	}
	return level, nil
}

// ListLevels retrieves an institution's ladder ordered by level_order.
func (r *ResolverLevelRepository) ListLevels(institutionID int64) ([]models.ResolverLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM resolver_levels WHERE institution_id = ? ORDER BY level_order`
	rows, err := r.db.Query(query, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolver levels: %w", err)
	}
	defer rows.Close()

	var levels []models.ResolverLevel
	for rows.Next() {
		level, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resolver level: %w", err)
		}
		levels = append(levels, *level)
	}
	return levels, rows.Err()
}

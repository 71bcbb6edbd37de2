package repository

import (
	"database/sql"
	"fmt"

	"cmfs/models"
)

// CategoryResolverRepository handles database operations for the routing table
type CategoryResolverRepository struct {
	db *sql.DB
}

// NewCategoryResolverRepository creates a new category resolver repository
func NewCategoryResolverRepository(db *sql.DB) *CategoryResolverRepository {
	return &CategoryResolverRepository{db: db}
}

// CreateResolver inserts a routing table entry and sets its id.
func (r *CategoryResolverRepository) CreateResolver(resolver *models.CategoryResolver) error {
	query := `
		INSERT INTO category_resolvers (category_id, level_id, officer_id, active)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, resolver.CategoryID, resolver.LevelID, resolver.OfficerID, resolver.Active)
	if err != nil {
		return fmt.Errorf("failed to create category resolver: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get resolver ID: %w", err)
	}
	resolver.ResolverID = id
	return nil
}

// FindActiveResolver retrieves the active routing entry for (category, level).
// When multiple officers are eligible, the lowest officer id wins so routing
// is deterministic. Returns nil when no active entry exists.
func (r *CategoryResolverRepository) FindActiveResolver(categoryID string, levelID int64) (*models.CategoryResolver, error) {
	query := `
		SELECT resolver_id, category_id, level_id, officer_id, active
		FROM category_resolvers
		WHERE category_id = ? AND level_id = ? AND active = TRUE
		ORDER BY officer_id ASC LIMIT 1
	`
	var resolver models.CategoryResolver
	err := r.db.QueryRow(query, categoryID, levelID).Scan(
		&resolver.ResolverID, &resolver.CategoryID, &resolver.LevelID,
		&resolver.OfficerID, &resolver.Active,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category resolver: %w", err)
	}
	return &resolver, nil
}

// SetResolverActive toggles a routing entry's active flag.
func (r *CategoryResolverRepository) SetResolverActive(resolverID int64, active bool) error {
	query := `UPDATE category_resolvers SET active = ? WHERE resolver_id = ?`
	_, err := r.db.Exec(query, active, resolverID)
	if err != nil {
		return fmt.Errorf("failed to update category resolver: %w", err)
	}
	return nil
}

// ListResolversByCategory retrieves all routing entries for a category.
func (r *CategoryResolverRepository) ListResolversByCategory(categoryID string) ([]models.CategoryResolver, error) {
	query := `
		SELECT resolver_id, category_id, level_id, officer_id, active
		FROM category_resolvers WHERE category_id = ?
		ORDER BY level_id, officer_id
	`
	rows, err := r.db.Query(query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category resolvers: %w", err)
	}
	defer rows.Close()

	var resolvers []models.CategoryResolver
	for rows.Next() {
		var resolver models.CategoryResolver
		if err := rows.Scan(
			&resolver.ResolverID, &resolver.CategoryID, &resolver.LevelID,
			&resolver.OfficerID, &resolver.Active,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category resolver: %w", err)
		}
		resolvers = append(resolvers, resolver)
	}
	return resolvers, rows.Err()
}

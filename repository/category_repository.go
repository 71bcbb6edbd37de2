package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"cmfs/models"

	"github.com/google/uuid"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GenerateCategoryID generates an opaque category id.
// Format: CAT-{10 hex chars}
func GenerateCategoryID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "CAT-" + hex[:10]
}

// CreateCategory inserts a new category. The caller must have validated the
// parent chain (no cycles) beforehand.
func (r *CategoryRepository) CreateCategory(cat *models.Category) error {
	if cat.CategoryID == "" {
		cat.CategoryID = GenerateCategoryID()
	}
	query := `
		INSERT INTO categories (category_id, institution_id, name, description, parent_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, cat.CategoryID, cat.InstitutionID, cat.Name, cat.Description, cat.ParentID, cat.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory updates the mutable category fields.
func (r *CategoryRepository) UpdateCategory(cat *models.Category) error {
	query := `
		UPDATE categories
		SET name = ?, description = ?, parent_id = ?, is_active = ?
		WHERE category_id = ?
	`
	_, err := r.db.Exec(query, cat.Name, cat.Description, cat.ParentID, cat.IsActive, cat.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves one category.
func (r *CategoryRepository) GetCategoryByID(id string) (*models.Category, error) {
	query := `
		SELECT category_id, institution_id, name, description, parent_id, is_active, created_at
		FROM categories WHERE category_id = ?
	`
	var cat models.Category
	err := r.db.QueryRow(query, id).Scan(
		&cat.CategoryID, &cat.InstitutionID, &cat.Name, &cat.Description,
		&cat.ParentID, &cat.IsActive, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// ListActiveCategories retrieves active categories visible to an
// institution: the institution's own categories plus global ones.
// A nil institutionID applies no institution filter and returns every
// active category.
func (r *CategoryRepository) ListActiveCategories(institutionID *int64) ([]models.Category, error) {
	query := `
		SELECT category_id, institution_id, name, description, parent_id, is_active, created_at
		FROM categories
		WHERE is_active = TRUE AND (? IS NULL OR institution_id IS NULL OR institution_id = ?)
		ORDER BY name
	`
	var arg sql.NullInt64
	if institutionID != nil {
		arg = sql.NullInt64{Int64: *institutionID, Valid: true}
	}
	rows, err := r.db.Query(query, arg, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// ListCategories retrieves all categories for admin tooling.
func (r *CategoryRepository) ListCategories() ([]models.Category, error) {
	query := `
		SELECT category_id, institution_id, name, description, parent_id, is_active, created_at
		FROM categories ORDER BY name
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows *sql.Rows) ([]models.Category, error) {
	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(
			&cat.CategoryID, &cat.InstitutionID, &cat.Name, &cat.Description,
			&cat.ParentID, &cat.IsActive, &cat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

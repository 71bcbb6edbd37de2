package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cmfs/models"
	"cmfs/repository"
)

// Validation errors for taxonomy writes.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrParentCycle   = errors.New("parent chain forms a cycle")
	ErrInvalidOrder  = errors.New("level_order must be at least 1")
	ErrInvalidWindow = errors.New("escalation time must be positive")
	ErrSelfParent    = errors.New("category cannot be its own parent")
)

const maxParentChainDepth = 32

// CategoryService manages the classification taxonomy and the routing
// configuration: categories, resolver levels and category-resolver entries.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	levelRepo    *repository.ResolverLevelRepository
	resolverRepo *repository.CategoryResolverRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo *repository.CategoryRepository,
	levelRepo *repository.ResolverLevelRepository,
	resolverRepo *repository.CategoryResolverRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		levelRepo:    levelRepo,
		resolverRepo: resolverRepo,
	}
}

// CreateCategory validates and stores a new category. The parent, when set,
// must exist; cycles are impossible on create since the new id does not
// appear in any existing chain.
func (s *CategoryService) CreateCategory(cat *models.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return ErrNameRequired
	}
	if cat.ParentID.Valid {
		if _, err := s.categoryRepo.GetCategoryByID(cat.ParentID.String); err != nil {
			return fmt.Errorf("parent category: %w", err)
		}
	}
	return s.categoryRepo.CreateCategory(cat)
}

// UpdateCategory validates and stores category edits. A parent change is
// rejected when it would make the category an ancestor of itself.
func (s *CategoryService) UpdateCategory(cat *models.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return ErrNameRequired
	}
	if _, err := s.categoryRepo.GetCategoryByID(cat.CategoryID); err != nil {
		return err
	}
	if cat.ParentID.Valid {
		if err := s.checkParentChain(cat.CategoryID, cat.ParentID); err != nil {
			return err
		}
	}
	return s.categoryRepo.UpdateCategory(cat)
}

// checkParentChain walks up from the proposed parent and fails if it reaches
// the category being edited. Depth is capped so a pre-existing corrupt chain
// cannot loop forever.
func (s *CategoryService) checkParentChain(categoryID string, parentID sql.NullString) error {
	if parentID.String == categoryID {
		return ErrSelfParent
	}
	cursor := parentID
	for depth := 0; cursor.Valid; depth++ {
		if depth >= maxParentChainDepth {
			return ErrParentCycle
		}
		ancestor, err := s.categoryRepo.GetCategoryByID(cursor.String)
		if err != nil {
			return fmt.Errorf("parent category: %w", err)
		}
		if ancestor.CategoryID == categoryID {
			return ErrParentCycle
		}
		cursor = ancestor.ParentID
	}
	return nil
}

// GetCategory retrieves one category.
func (s *CategoryService) GetCategory(id string) (*models.Category, error) {
	return s.categoryRepo.GetCategoryByID(id)
}

// ListVisibleCategories retrieves the active categories visible to an
// institution scope.
func (s *CategoryService) ListVisibleCategories(institutionID *int64) ([]models.Category, error) {
	return s.categoryRepo.ListActiveCategories(institutionID)
}

// ListAllCategories retrieves every category for admin tooling.
func (s *CategoryService) ListAllCategories() ([]models.Category, error) {
	return s.categoryRepo.ListCategories()
}

// CreateLevel validates and stores a new resolver level.
func (s *CategoryService) CreateLevel(level *models.ResolverLevel) error {
	level.Name = strings.TrimSpace(level.Name)
	if level.Name == "" {
		return ErrNameRequired
	}
	if level.LevelOrder < 1 {
		return ErrInvalidOrder
	}
	if level.EscalationTime <= 0 {
		return ErrInvalidWindow
	}
	return s.levelRepo.CreateLevel(level)
}

// ListLevels retrieves an institution's escalation ladder.
func (s *CategoryService) ListLevels(institutionID int64) ([]models.ResolverLevel, error) {
	return s.levelRepo.ListLevels(institutionID)
}

// CreateResolver validates and stores a routing table entry. Both the
// category and the level must exist.
func (s *CategoryService) CreateResolver(resolver *models.CategoryResolver) error {
	if _, err := s.categoryRepo.GetCategoryByID(resolver.CategoryID); err != nil {
		return err
	}
	if _, err := s.levelRepo.GetLevelByID(resolver.LevelID); err != nil {
		return err
	}
	return s.resolverRepo.CreateResolver(resolver)
}

// SetResolverActive toggles a routing entry.
func (s *CategoryService) SetResolverActive(resolverID int64, active bool) error {
	return s.resolverRepo.SetResolverActive(resolverID, active)
}

// ListResolvers retrieves a category's routing entries.
func (s *CategoryService) ListResolvers(categoryID string) ([]models.CategoryResolver, error) {
	return s.resolverRepo.ListResolversByCategory(categoryID)
}

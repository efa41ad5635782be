package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/utils"
)

// maxCategoryDepth bounds the ancestor walk used for cycle detection.
const maxCategoryDepth = 32

// CategoryFilter carries the raw category listing parameters.
type CategoryFilter struct {
	Tree     bool
	ParentID string
	IsActive string
}

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Name         string  `json:"name" validate:"required"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	ParentID     *string `json:"parent_id"`
	ImageURL     string  `json:"image_url"`
	DisplayOrder int     `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// ListCategories returns categories ordered by display order then name,
// either flat or nested under their parents.
func (s *CatalogService) ListCategories(ctx context.Context, filter CategoryFilter) ([]*models.CategoryWithStats, error) {
	var query repository.CategoryQuery
	switch filter.ParentID {
	case "":
	case "null":
		query.RootsOnly = true
	default:
		id, err := uuid.Parse(filter.ParentID)
		if err != nil {
			return nil, validationError("parent_id is invalid")
		}
		query.ParentID = &id
	}
	if filter.IsActive != "" {
		active := filter.IsActive == "true"
		query.IsActive = &active
	}

	rows, err := s.categories.List(ctx, query)
	if err != nil {
		return nil, storageError("Failed to fetch categories", err)
	}

	flat := make([]*models.CategoryWithStats, 0, len(rows))
	for i := range rows {
		flat = append(flat, &rows[i])
	}
	if filter.Tree {
		return BuildCategoryTree(flat), nil
	}
	return flat, nil
}

// BuildCategoryTree nests categories under their parents, keeping input
// order. Categories whose parent is not in the list become roots.
func BuildCategoryTree(categories []*models.CategoryWithStats) []*models.CategoryWithStats {
	byID := make(map[uuid.UUID]*models.CategoryWithStats, len(categories))
	for _, c := range categories {
		c.Children = nil
		byID[c.ID] = c
	}

	roots := make([]*models.CategoryWithStats, 0)
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID != c.ID {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

// CreateCategory stores a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.CategoryWithStats, error) {
	category, err := s.categoryFromInput(ctx, input, nil)
	if err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, duplicateCategoryError()
		}
		return nil, storageError("Failed to create category", err)
	}

	s.logger.Info("category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))
	return s.withParentName(ctx, category), nil
}

// UpdateCategory replaces a category, refusing parent changes that would
// form a cycle.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.CategoryWithStats, error) {
	existing, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Category not found")
		}
		return nil, storageError("Failed to fetch category", err)
	}
	if input.Slug == "" {
		input.Slug = existing.Slug
	}

	category, err := s.categoryFromInput(ctx, input, &id)
	if err != nil {
		return nil, err
	}
	category.ID = id
	category.CreatedAt = existing.CreatedAt

	if category.ParentID != nil {
		if err := s.ensureNoCycle(ctx, id, *category.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categories.Update(ctx, category); err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, notFoundError("Category not found")
		case repository.IsUniqueViolation(err):
			return nil, duplicateCategoryError()
		}
		return nil, storageError("Failed to update category", err)
	}
	return s.withParentName(ctx, category), nil
}

// DeleteCategory removes a category that has no products or children.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	children, products, err := s.categories.CountDependents(ctx, id)
	if err != nil {
		return storageError("Failed to check category usage", err)
	}
	if children > 0 || products > 0 {
		return conflictError("Category still has products or subcategories")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return notFoundError("Category not found")
		}
		return storageError("Failed to delete category", err)
	}
	return nil
}

func (s *CatalogService) categoryFromInput(ctx context.Context, input CategoryInput, excludeID *uuid.UUID) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationError("Category name is required")
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return nil, validationError("name must contain letters or digits")
	}

	taken, err := s.categories.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return nil, storageError("Failed to check category slug", err)
	}
	if taken {
		return nil, duplicateCategoryError()
	}

	var parentID *uuid.UUID
	if input.ParentID != nil && *input.ParentID != "" {
		id, err := uuid.Parse(*input.ParentID)
		if err != nil {
			return nil, validationError("parent_id is invalid")
		}
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return nil, validationError("parent_id does not reference a category")
			}
			return nil, storageError("Failed to fetch parent category", err)
		}
		parentID = &id
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	return &models.Category{
		Name:         input.Name,
		Slug:         slug,
		Description:  input.Description,
		ParentID:     parentID,
		ImageURL:     input.ImageURL,
		DisplayOrder: input.DisplayOrder,
		IsActive:     isActive,
	}, nil
}

// ensureNoCycle walks up from parentID and fails if it reaches id.
func (s *CatalogService) ensureNoCycle(ctx context.Context, id, parentID uuid.UUID) error {
	current := &parentID
	for depth := 0; current != nil; depth++ {
		if *current == id {
			return validationError("Category cannot be nested under itself")
		}
		if depth >= maxCategoryDepth {
			return validationError("Category nesting is too deep")
		}
		ancestor, err := s.categories.FindByID(ctx, *current)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return storageError("Failed to fetch parent category", err)
		}
		current = ancestor.ParentID
	}
	return nil
}

func (s *CatalogService) withParentName(ctx context.Context, category *models.Category) *models.CategoryWithStats {
	row := &models.CategoryWithStats{Category: *category}
	if category.ParentID == nil {
		return row
	}
	parent, err := s.categories.FindByID(ctx, *category.ParentID)
	if err != nil {
		s.logger.Warn("parent category lookup failed", zap.String("category_id", category.ID.String()), zap.Error(err))
		return row
	}
	row.ParentName = &parent.Name
	return row
}

func duplicateCategoryError() *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: "Category with this slug already exists", Status: http.StatusBadRequest}
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// CategoryQuery filters a category listing.
type CategoryQuery struct {
	ParentID  *uuid.UUID
	RootsOnly bool
	IsActive  *bool
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context, q CategoryQuery) ([]models.CategoryWithStats, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDependents(ctx context.Context, id uuid.UUID) (children int64, products int64, err error)
}

type gormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a gorm backed CategoryRepository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

func (r *gormCategoryRepository) List(ctx context.Context, q CategoryQuery) ([]models.CategoryWithStats, error) {
	query := r.db.WithContext(ctx).
		Table("categories AS c").
		Select(`c.*, p.name AS parent_name,
			(SELECT COUNT(*) FROM products pr WHERE pr.category_id = c.id) AS product_count`).
		Joins("LEFT JOIN categories p ON p.id = c.parent_id")

	switch {
	case q.RootsOnly:
		query = query.Where("c.parent_id IS NULL")
	case q.ParentID != nil:
		query = query.Where("c.parent_id = ?", *q.ParentID)
	}
	if q.IsActive != nil {
		query = query.Where("c.is_active = ?", *q.IsActive)
	}

	var rows []models.CategoryWithStats
	err := query.Order("c.display_order asc").Order("c.name asc").Scan(&rows).Error
	return rows, err
}

func (r *gormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *gormCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

func (r *gormCategoryRepository) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *gormCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(category).
		Select("name", "slug", "description", "parent_id", "image_url", "display_order", "is_active", "updated_at").
		Updates(category)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormCategoryRepository) CountDependents(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	var children, products int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, 0, err
	}
	return children, products, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// NavigationRepository persists nav items and social media links.
type NavigationRepository interface {
	ListNavItems(ctx context.Context, location string, activeOnly bool) ([]models.NavItem, error)
	FindNavItem(ctx context.Context, id uuid.UUID) (*models.NavItem, error)
	CreateNavItem(ctx context.Context, item *models.NavItem) error
	SaveNavItem(ctx context.Context, item *models.NavItem) error
	DeleteNavItem(ctx context.Context, id uuid.UUID) error

	ListSocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialMediaLink, error)
	FindSocialLink(ctx context.Context, id uuid.UUID) (*models.SocialMediaLink, error)
	CreateSocialLink(ctx context.Context, link *models.SocialMediaLink) error
	SaveSocialLink(ctx context.Context, link *models.SocialMediaLink) error
	DeleteSocialLink(ctx context.Context, id uuid.UUID) error
}

type gormNavigationRepository struct {
	db *gorm.DB
}

// NewNavigationRepository returns a gorm backed NavigationRepository.
func NewNavigationRepository(db *gorm.DB) NavigationRepository {
	return &gormNavigationRepository{db: db}
}

func (r *gormNavigationRepository) ListNavItems(ctx context.Context, location string, activeOnly bool) ([]models.NavItem, error) {
	query := r.db.WithContext(ctx).Where("location = ?", location)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var items []models.NavItem
	err := query.Order("display_order asc").Order("created_at asc").Find(&items).Error
	return items, err
}

func (r *gormNavigationRepository) FindNavItem(ctx context.Context, id uuid.UUID) (*models.NavItem, error) {
	var item models.NavItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gormNavigationRepository) CreateNavItem(ctx context.Context, item *models.NavItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormNavigationRepository) SaveNavItem(ctx context.Context, item *models.NavItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *gormNavigationRepository) DeleteNavItem(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.NavItem{}, id)
}

func (r *gormNavigationRepository) ListSocialLinks(ctx context.Context, activeOnly bool) ([]models.SocialMediaLink, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var links []models.SocialMediaLink
	err := query.Order("display_order asc").Order("created_at asc").Find(&links).Error
	return links, err
}

func (r *gormNavigationRepository) FindSocialLink(ctx context.Context, id uuid.UUID) (*models.SocialMediaLink, error) {
	var link models.SocialMediaLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormNavigationRepository) CreateSocialLink(ctx context.Context, link *models.SocialMediaLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *gormNavigationRepository) SaveSocialLink(ctx context.Context, link *models.SocialMediaLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *gormNavigationRepository) DeleteSocialLink(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.SocialMediaLink{}, id)
}

func deleteByID(db *gorm.DB, model any, id uuid.UUID) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

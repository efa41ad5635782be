package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
)

const defaultNavLocation = "header"

// NavItemInput creates a nav item or, with nil fields left untouched,
// updates one.
type NavItemInput struct {
	Label        *string         `json:"label"`
	Href         *string         `json:"href"`
	ParentID     *string         `json:"parent_id"`
	Type         *string         `json:"type" validate:"omitempty,oneof=link dropdown button"`
	Target       *string         `json:"target" validate:"omitempty,oneof=_self _blank"`
	Icon         *string         `json:"icon"`
	DisplayOrder *int            `json:"display_order"`
	IsActive     *bool           `json:"is_active"`
	Location     *string         `json:"location" validate:"omitempty,oneof=header footer mobile"`
	Meta         json.RawMessage `json:"meta"`
}

// SocialLinkInput creates or partially updates a social media link.
type SocialLinkInput struct {
	Platform     *string `json:"platform"`
	URL          *string `json:"url" validate:"omitempty,url"`
	Icon         *string `json:"icon"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// SocialLinkList is the social media listing payload.
type SocialLinkList struct {
	Links []models.SocialMediaLink `json:"links"`
	Total int                      `json:"total"`
}

// NavigationService manages storefront navigation and social links.
type NavigationService struct {
	repo   repository.NavigationRepository
	logger *zap.Logger
}

func NewNavigationService(repo repository.NavigationRepository, logger *zap.Logger) *NavigationService {
	return &NavigationService{repo: repo, logger: logger}
}

// ListNav returns the items of one location ordered for display.
func (s *NavigationService) ListNav(ctx context.Context, location string, activeOnly bool) ([]models.NavItem, error) {
	if location == "" {
		location = defaultNavLocation
	}
	items, err := s.repo.ListNavItems(ctx, location, activeOnly)
	if err != nil {
		return nil, storageError("Failed to fetch navigation items", err)
	}
	if items == nil {
		items = []models.NavItem{}
	}
	return items, nil
}

func (s *NavigationService) GetNav(ctx context.Context, id uuid.UUID) (*models.NavItem, error) {
	item, err := s.repo.FindNavItem(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Navigation item not found")
		}
		return nil, storageError("Failed to fetch navigation item", err)
	}
	return item, nil
}

func (s *NavigationService) CreateNav(ctx context.Context, input NavItemInput) (*models.NavItem, error) {
	if blank(input.Label) || blank(input.Href) {
		return nil, validationError("Label and href are required")
	}
	item := &models.NavItem{
		Type:     "link",
		Target:   "_self",
		IsActive: true,
		Location: defaultNavLocation,
	}
	if err := applyNavInput(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateNavItem(ctx, item); err != nil {
		return nil, storageError("Failed to create navigation item", err)
	}
	return item, nil
}

func (s *NavigationService) UpdateNav(ctx context.Context, id uuid.UUID, input NavItemInput) (*models.NavItem, error) {
	item, err := s.GetNav(ctx, id)
	if err != nil {
		return nil, err
	}
	if (input.Label != nil && blank(input.Label)) || (input.Href != nil && blank(input.Href)) {
		return nil, validationError("Label and href are required")
	}
	if err := applyNavInput(item, input); err != nil {
		return nil, err
	}
	if item.ParentID != nil && *item.ParentID == item.ID {
		return nil, validationError("Navigation item cannot be its own parent")
	}
	if err := s.repo.SaveNavItem(ctx, item); err != nil {
		return nil, storageError("Failed to update navigation item", err)
	}
	return item, nil
}

func (s *NavigationService) DeleteNav(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNavItem(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return notFoundError("Navigation item not found")
		}
		return storageError("Failed to delete navigation item", err)
	}
	return nil
}

func applyNavInput(item *models.NavItem, input NavItemInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if input.Label != nil {
		item.Label = strings.TrimSpace(*input.Label)
	}
	if input.Href != nil {
		item.Href = strings.TrimSpace(*input.Href)
	}
	if input.ParentID != nil {
		if *input.ParentID == "" {
			item.ParentID = nil
		} else {
			parentID, err := uuid.Parse(*input.ParentID)
			if err != nil {
				return validationError("parent_id is invalid")
			}
			item.ParentID = &parentID
		}
	}
	if input.Type != nil {
		item.Type = *input.Type
	}
	if input.Target != nil {
		item.Target = *input.Target
	}
	if input.Icon != nil {
		if *input.Icon == "" {
			item.Icon = ""
		} else {
			icon, ok := ParseIcon(*input.Icon)
			if !ok {
				return validationError("icon %q is not supported", *input.Icon)
			}
			item.Icon = string(icon)
		}
	}
	if input.DisplayOrder != nil {
		item.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.Location != nil {
		item.Location = *input.Location
	}
	if len(input.Meta) > 0 {
		if !json.Valid(input.Meta) {
			return validationError("meta must be valid JSON")
		}
		item.Meta = datatypes.JSON(input.Meta)
	}
	return nil
}

// ListSocialLinks returns the social links in display order.
func (s *NavigationService) ListSocialLinks(ctx context.Context, activeOnly bool) (*SocialLinkList, error) {
	links, err := s.repo.ListSocialLinks(ctx, activeOnly)
	if err != nil {
		return nil, storageError("Failed to fetch social media links", err)
	}
	if links == nil {
		links = []models.SocialMediaLink{}
	}
	return &SocialLinkList{Links: links, Total: len(links)}, nil
}

func (s *NavigationService) CreateSocialLink(ctx context.Context, input SocialLinkInput) (*models.SocialMediaLink, error) {
	if blank(input.Platform) || blank(input.URL) || blank(input.Icon) {
		return nil, validationError("Platform, URL, and icon are required")
	}
	link := &models.SocialMediaLink{IsActive: true}
	if err := applySocialInput(link, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSocialLink(ctx, link); err != nil {
		return nil, storageError("Failed to create social media link", err)
	}
	s.logger.Info("social media link created", zap.String("platform", link.Platform))
	return link, nil
}

func (s *NavigationService) UpdateSocialLink(ctx context.Context, id uuid.UUID, input SocialLinkInput) (*models.SocialMediaLink, error) {
	link, err := s.repo.FindSocialLink(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Social media link not found")
		}
		return nil, storageError("Failed to fetch social media link", err)
	}
	if (input.Platform != nil && blank(input.Platform)) || (input.URL != nil && blank(input.URL)) || (input.Icon != nil && blank(input.Icon)) {
		return nil, validationError("Platform, URL, and icon are required")
	}
	if err := applySocialInput(link, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSocialLink(ctx, link); err != nil {
		return nil, storageError("Failed to update social media link", err)
	}
	return link, nil
}

func (s *NavigationService) DeleteSocialLink(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSocialLink(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return notFoundError("Social media link not found")
		}
		return storageError("Failed to delete social media link", err)
	}
	return nil
}

func applySocialInput(link *models.SocialMediaLink, input SocialLinkInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if input.Platform != nil {
		link.Platform = strings.TrimSpace(*input.Platform)
	}
	if input.URL != nil {
		link.URL = strings.TrimSpace(*input.URL)
	}
	if input.Icon != nil {
		icon, ok := ParseIcon(*input.Icon)
		if !ok {
			return validationError("icon %q is not supported", *input.Icon)
		}
		link.Icon = string(icon)
	}
	if input.DisplayOrder != nil {
		link.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

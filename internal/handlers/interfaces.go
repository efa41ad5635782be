package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
)

// ProductService is the catalog surface used by ProductHandler.
type ProductService interface {
	ListProducts(ctx context.Context, filter services.ProductFilter) (*services.ProductList, error)
	GetProductBySlug(ctx context.Context, slug string) (*services.ProductDetail, error)
	CreateProduct(ctx context.Context, input services.ProductInput) (*services.ProductView, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input services.ProductInput) (*services.ProductView, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context) ([]models.Product, error)
}

// CategoryService is the catalog surface used by CategoryHandler.
type CategoryService interface {
	ListCategories(ctx context.Context, filter services.CategoryFilter) ([]*models.CategoryWithStats, error)
	CreateCategory(ctx context.Context, input services.CategoryInput) (*models.CategoryWithStats, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input services.CategoryInput) (*models.CategoryWithStats, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type SettingsService interface {
	Get(ctx context.Context, key string) (*services.SettingDetail, error)
	All(ctx context.Context) (*services.SettingsSnapshot, error)
	Update(ctx context.Context, key string, value any) (*services.SettingDetail, error)
	Create(ctx context.Context, input services.CreateSettingInput) (*services.SettingDetail, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input services.PlaceOrderInput) (*models.Order, bool, error)
	ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error)
}

type PaymentService interface {
	GetPaymentStatus(ctx context.Context, rawOrderID string) (*services.PaymentStatusView, error)
	AttachPaymentLink(ctx context.Context, input services.SavePaymentLinkInput) (*services.PaymentLinkView, error)
	CreatePaymentLink(ctx context.Context, rawOrderID string) (*services.PaymentLinkView, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type NavigationService interface {
	ListNav(ctx context.Context, location string, activeOnly bool) ([]models.NavItem, error)
	GetNav(ctx context.Context, id uuid.UUID) (*models.NavItem, error)
	CreateNav(ctx context.Context, input services.NavItemInput) (*models.NavItem, error)
	UpdateNav(ctx context.Context, id uuid.UUID, input services.NavItemInput) (*models.NavItem, error)
	DeleteNav(ctx context.Context, id uuid.UUID) error
	ListSocialLinks(ctx context.Context, activeOnly bool) (*services.SocialLinkList, error)
	CreateSocialLink(ctx context.Context, input services.SocialLinkInput) (*models.SocialMediaLink, error)
	UpdateSocialLink(ctx context.Context, id uuid.UUID, input services.SocialLinkInput) (*models.SocialMediaLink, error)
	DeleteSocialLink(ctx context.Context, id uuid.UUID) error
}

type RevenueService interface {
	Overview(ctx context.Context) (*services.RevenueOverview, error)
	Analytics(ctx context.Context, q services.AnalyticsQuery) (*services.RevenueAnalytics, error)
}

type AuthService interface {
	Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error)
}

package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/utils"
)

const (
	defaultProductPageSize   = 12
	relatedProductsLimit     = 4
	defaultLowStockThreshold = 5
)

// ProductFilter carries the raw listing parameters.
type ProductFilter struct {
	CategoryID string
	MinPrice   string
	MaxPrice   string
	IsFeatured string
	IsActive   string
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// PageInfo describes one page of a listing.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ProductView is a product enriched for storefront listings.
type ProductView struct {
	models.Product
	CategoryName *string `json:"category_name"`
	ImageCount   int     `json:"image_count"`
	PrimaryImage *string `json:"primary_image"`
}

// ProductList is one page of products.
type ProductList struct {
	Products   []ProductView `json:"products"`
	Pagination PageInfo      `json:"pagination"`
}

// ProductDetail is a product page: the product, its category chain and a
// few related products.
type ProductDetail struct {
	ProductView
	CategorySlug       *string       `json:"category_slug"`
	ParentCategoryID   *uuid.UUID    `json:"parent_category_id"`
	ParentCategoryName *string       `json:"parent_category_name"`
	ParentCategorySlug *string       `json:"parent_category_slug"`
	RelatedProducts    []ProductView `json:"relatedProducts"`
}

// ProductImageInput is one image in a product write.
type ProductImageInput struct {
	ImageURL     string `json:"image_url" validate:"required"`
	AltText      string `json:"alt_text"`
	DisplayOrder *int   `json:"display_order"`
}

// ProductInput creates or replaces a product.
type ProductInput struct {
	Name              string              `json:"name" validate:"required"`
	Slug              string              `json:"slug"`
	SKU               string              `json:"sku"`
	Description       string              `json:"description"`
	Price             decimal.Decimal     `json:"price"`
	CompareAtPrice    *decimal.Decimal    `json:"compare_at_price"`
	CategoryID        string              `json:"category_id" validate:"required"`
	StockQuantity     *int                `json:"stock_quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int                `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsFeatured        bool                `json:"is_featured"`
	IsActive          *bool               `json:"is_active"`
	Tags              []string            `json:"tags"`
	Images            []ProductImageInput `json:"images" validate:"omitempty,dive"`
}

// CatalogService serves product and category reads and admin writes.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, categories: categories, logger: logger}
}

// ListProducts returns a filtered, sorted page of products.
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) (*ProductList, error) {
	query, pg, err := buildProductQuery(filter)
	if err != nil {
		return nil, err
	}

	products, total, err := s.products.List(ctx, query)
	if err != nil {
		return nil, storageError("Failed to fetch products", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, newProductView(product, false))
	}

	return &ProductList{
		Products: views,
		Pagination: PageInfo{
			Page:       pg.Page,
			Limit:      pg.Limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, pg.Limit),
		},
	}, nil
}

func buildProductQuery(filter ProductFilter) (repository.ProductQuery, utils.Pagination, error) {
	pg := utils.NewPagination(filter.Page, filter.Limit, defaultProductPageSize)
	query := repository.ProductQuery{
		Search:   filter.Search,
		SortBy:   filter.SortBy,
		SortDesc: !strings.EqualFold(filter.SortOrder, "asc"),
		Limit:    pg.Limit,
		Offset:   pg.Offset,
	}

	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return query, pg, validationError("category_id is invalid")
		}
		query.CategoryID = &id
	}
	if filter.MinPrice != "" {
		d, err := decimal.NewFromString(filter.MinPrice)
		if err != nil {
			return query, pg, validationError("min_price must be a number")
		}
		query.MinPrice = &d
	}
	if filter.MaxPrice != "" {
		d, err := decimal.NewFromString(filter.MaxPrice)
		if err != nil {
			return query, pg, validationError("max_price must be a number")
		}
		query.MaxPrice = &d
	}

	switch filter.IsFeatured {
	case "true":
		query.IsFeatured = boolPtr(true)
	case "false":
		query.IsFeatured = boolPtr(false)
	}

	switch filter.IsActive {
	case "all":
	case "false":
		query.IsActive = boolPtr(false)
	default:
		query.IsActive = boolPtr(true)
	}

	return query, pg, nil
}

// GetProductBySlug returns an active product page. Category and related
// product lookups degrade to empty fields on failure.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.products.FindActiveBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Product not found")
		}
		return nil, storageError("Failed to fetch product", err)
	}

	detail := &ProductDetail{RelatedProducts: []ProductView{}}

	category, err := s.categories.FindByID(ctx, product.CategoryID)
	switch {
	case err == nil:
		product.Category = category
		detail.CategorySlug = &category.Slug
		if category.ParentID != nil {
			detail.ParentCategoryID = category.ParentID
			if parent, err := s.categories.FindByID(ctx, *category.ParentID); err == nil {
				detail.ParentCategoryName = &parent.Name
				detail.ParentCategorySlug = &parent.Slug
			} else {
				s.logger.Warn("parent category lookup failed", zap.String("category_id", category.ParentID.String()), zap.Error(err))
			}
		}
	default:
		s.logger.Warn("category lookup failed", zap.String("product_id", product.ID.String()), zap.Error(err))
	}
	detail.ProductView = newProductView(*product, false)

	related, err := s.products.FindRelated(ctx, product.CategoryID, product.ID, relatedProductsLimit)
	if err != nil {
		s.logger.Warn("related products lookup failed", zap.String("product_id", product.ID.String()), zap.Error(err))
		return detail, nil
	}
	for _, p := range related {
		p.Category = product.Category
		detail.RelatedProducts = append(detail.RelatedProducts, newProductView(p, true))
	}
	return detail, nil
}

// CreateProduct validates and stores a new product with its images.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*ProductView, error) {
	product, images, err := s.productFromInput(ctx, input, nil)
	if err != nil {
		return nil, err
	}
	product.Images = images

	if err := s.products.Create(ctx, product); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, duplicateProductError()
		}
		return nil, storageError("Failed to create product", err)
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	view := newProductView(*product, false)
	return &view, nil
}

// UpdateProduct replaces a product. Images, stock, threshold and active flag
// keep their stored values when omitted.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error) {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Product not found")
		}
		return nil, storageError("Failed to fetch product", err)
	}

	if input.SKU == "" {
		input.SKU = existing.SKU
	}
	if input.Slug == "" {
		input.Slug = existing.Slug
	}
	if input.StockQuantity == nil {
		input.StockQuantity = &existing.StockQuantity
	}
	if input.LowStockThreshold == nil {
		input.LowStockThreshold = &existing.LowStockThreshold
	}
	if input.IsActive == nil {
		input.IsActive = &existing.IsActive
	}

	product, images, err := s.productFromInput(ctx, input, &id)
	if err != nil {
		return nil, err
	}
	product.ID = id
	product.CreatedAt = existing.CreatedAt
	if input.Images == nil {
		images = nil
	}

	if err := s.products.Update(ctx, product, images); err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, notFoundError("Product not found")
		case repository.IsUniqueViolation(err):
			return nil, duplicateProductError()
		}
		return nil, storageError("Failed to update product", err)
	}
	if images == nil {
		product.Images = existing.Images
	}

	view := newProductView(*product, false)
	return &view, nil
}

// DeleteProduct removes a product and its images.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return notFoundError("Product not found")
		}
		return storageError("Failed to delete product", err)
	}
	return nil
}

// LowStock lists active products at or below their own threshold.
func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, storageError("Failed to fetch low stock products", err)
	}
	return products, nil
}

func (s *CatalogService) productFromInput(ctx context.Context, input ProductInput, excludeID *uuid.UUID) (*models.Product, []models.ProductImage, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, nil, err
	}
	if !input.Price.IsPositive() {
		return nil, nil, validationError("price must be greater than 0")
	}
	if input.CompareAtPrice != nil && input.CompareAtPrice.IsNegative() {
		return nil, nil, validationError("compare_at_price must not be negative")
	}

	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		return nil, nil, validationError("category_id is invalid")
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, validationError("category_id does not reference a category")
		}
		return nil, nil, storageError("Failed to fetch category", err)
	}

	slug := utils.Slugify(input.Slug)
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		return nil, nil, validationError("name must contain letters or digits")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = utils.GenerateSKU(input.Name)
	}

	taken, err := s.products.SlugOrSKUTaken(ctx, slug, sku, excludeID)
	if err != nil {
		return nil, nil, storageError("Failed to check product uniqueness", err)
	}
	if taken {
		return nil, nil, duplicateProductError()
	}

	lowStock := defaultLowStockThreshold
	if input.LowStockThreshold != nil {
		lowStock = *input.LowStockThreshold
	}
	stock := 0
	if input.StockQuantity != nil {
		stock = *input.StockQuantity
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &models.Product{
		Name:              input.Name,
		Slug:              slug,
		SKU:               sku,
		Description:       input.Description,
		Price:             input.Price.Round(2),
		CompareAtPrice:    input.CompareAtPrice,
		StockQuantity:     stock,
		LowStockThreshold: lowStock,
		CategoryID:        categoryID,
		IsFeatured:        input.IsFeatured,
		IsActive:          isActive,
		Tags:              pq.StringArray(input.Tags),
	}

	images := make([]models.ProductImage, 0, len(input.Images))
	for i, img := range input.Images {
		order := i
		if img.DisplayOrder != nil {
			order = *img.DisplayOrder
		}
		alt := img.AltText
		if alt == "" {
			alt = input.Name
		}
		images = append(images, models.ProductImage{
			ImageURL:     img.ImageURL,
			AltText:      alt,
			DisplayOrder: order,
			IsPrimary:    i == 0,
		})
	}
	return product, images, nil
}

func duplicateProductError() *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: "Product with this slug or SKU already exists", Status: http.StatusBadRequest}
}

// newProductView derives the listing fields. With fallback set, a product
// without a primary image uses its first image.
func newProductView(product models.Product, fallback bool) ProductView {
	if product.Images == nil {
		product.Images = []models.ProductImage{}
	}
	view := ProductView{Product: product, ImageCount: len(product.Images)}
	if product.Category != nil {
		name := product.Category.Name
		view.CategoryName = &name
	}
	for _, img := range product.Images {
		if img.IsPrimary {
			url := img.ImageURL
			view.PrimaryImage = &url
			break
		}
	}
	if view.PrimaryImage == nil && fallback && len(product.Images) > 0 {
		url := product.Images[0].ImageURL
		view.PrimaryImage = &url
	}
	return view
}

func boolPtr(b bool) *bool {
	return &b
}

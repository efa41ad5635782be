package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
)

// memStore backs the product and order fakes so checkout can mutate stock
// and orders under one lock, the way a transaction would.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	orders   map[uuid.UUID]*models.Order
}

func newMemStore(products ...models.Product) *memStore {
	s := &memStore{
		products: make(map[uuid.UUID]*models.Product),
		orders:   make(map[uuid.UUID]*models.Order),
	}
	for i := range products {
		p := products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		s.products[p.ID] = &p
	}
	return s
}

func (s *memStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].StockQuantity
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) List(ctx context.Context, q repository.ProductQuery) ([]models.Product, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Product
	for _, p := range r.store.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProductRepo) FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.Slug == slug && p.IsActive {
			c := *p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Product
	for _, p := range r.store.products {
		if p.CategoryID == categoryID && p.ID != excludeID && p.IsActive && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SlugOrSKUTaken(ctx context.Context, slug, sku string, excludeID *uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.Slug == slug || p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product.ID = uuid.New()
	c := *product
	r.store.products[product.ID] = &c
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *models.Product, images []models.ProductImage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.products[product.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *product
	if images == nil {
		c.Images = existing.Images
	} else {
		c.Images = images
	}
	r.store.products[product.ID] = &c
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.products, id)
	return nil
}

func (r *fakeProductRepo) LowStock(ctx context.Context) ([]models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Product
	for _, p := range r.store.products {
		if p.IsActive && p.StockQuantity <= p.LowStockThreshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) Place(ctx context.Context, order *models.Order, lines []repository.StockLine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if order.IdempotencyKey != nil {
		for _, o := range r.store.orders {
			if o.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	for _, line := range lines {
		p, ok := r.store.products[line.ProductID]
		if !ok || p.StockQuantity < line.Quantity {
			return &repository.InsufficientStockError{ProductID: line.ProductID}
		}
	}
	for _, line := range lines {
		r.store.products[line.ProductID].StockQuantity -= line.Quantity
	}

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return cloneOrder(o), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByPaymentLinkID(ctx context.Context, linkID string) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.StripePaymentLinkID == linkID {
			return cloneOrder(o), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) List(ctx context.Context, q repository.OrderQuery) ([]models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Order
	for _, o := range r.store.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, q.CustomerEmail) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

func (r *fakeOrderRepo) SavePaymentLink(ctx context.Context, id uuid.UUID, refs repository.PaymentLinkRefs) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.StripeProductID = refs.ProductID
	o.StripePriceID = refs.PriceID
	o.StripePaymentLinkID = refs.PaymentLinkID
	o.StripePaymentLinkURL = refs.URL
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) Mutate(ctx context.Context, id uuid.UUID, fn repository.OrderMutation) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	updates, restock, err := fn(cloneOrder(o))
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return cloneOrder(o), nil
	}
	for _, line := range restock {
		if p, ok := r.store.products[line.ProductID]; ok {
			p.StockQuantity += line.Quantity
		}
	}
	if v, ok := updates["status"].(string); ok {
		o.Status = v
	}
	if v, ok := updates["payment_status"].(string); ok {
		o.PaymentStatus = v
	}
	return cloneOrder(o), nil
}

type fakePricing struct {
	settings PricingSettings
	err      error
}

func (p fakePricing) Pricing(ctx context.Context) (PricingSettings, error) {
	return p.settings, p.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	placed []models.Order
	paid   []models.Order
}

func (n *recordingNotifier) OrderPlaced(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order)
}

func (n *recordingNotifier) OrderPaid(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, order)
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]int64
}

func newFakeCategoryRepo(categories ...models.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: make(map[uuid.UUID]models.Category), products: make(map[uuid.UUID]int64)}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) List(ctx context.Context, q repository.CategoryQuery) ([]models.CategoryWithStats, error) {
	var out []models.CategoryWithStats
	for _, c := range r.categories {
		out = append(out, models.CategoryWithStats{Category: c, ProductCount: r.products[c.ID]})
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	for _, c := range r.categories {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	category.ID = uuid.New()
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) CountDependents(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	var children int64
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			children++
		}
	}
	return children, r.products[id], nil
}

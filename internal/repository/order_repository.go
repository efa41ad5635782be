package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/models"
)

// StockLine is a quantity to take from (or return to) one product.
type StockLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderQuery filters an order listing.
type OrderQuery struct {
	Status        string
	CustomerEmail string
	Limit         int
}

// PaymentLinkRefs are the payment provider references stored on an order.
type PaymentLinkRefs struct {
	ProductID     string
	PriceID       string
	PaymentLinkID string
	URL           string
}

// OrderMutation inspects a locked order and decides what to write. It
// returns the column updates and the stock to put back, if any.
type OrderMutation func(order *models.Order) (updates map[string]any, restock []StockLine, err error)

// OrderRepository persists orders and their items.
type OrderRepository interface {
	Place(ctx context.Context, order *models.Order, lines []StockLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	FindByPaymentLinkID(ctx context.Context, linkID string) (*models.Order, error)
	List(ctx context.Context, q OrderQuery) ([]models.Order, error)
	SavePaymentLink(ctx context.Context, id uuid.UUID, refs PaymentLinkRefs) (*models.Order, error)
	Mutate(ctx context.Context, id uuid.UUID, fn OrderMutation) (*models.Order, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository returns a gorm backed OrderRepository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// Place takes stock for every line and inserts the order with its items in
// a single transaction. A line whose product lacks stock aborts everything
// with *InsufficientStockError.
func (r *gormOrderRepository) Place(ctx context.Context, order *models.Order, lines []StockLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
				Updates(map[string]any{
					"stock_quantity": gorm.Expr("stock_quantity - ?", line.Quantity),
					"updated_at":     time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{ProductID: line.ProductID}
			}
		}

		items := order.Items
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("idempotency_key = ?", key).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByPaymentLinkID(ctx context.Context, linkID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("stripe_payment_link_id = ?", linkID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) List(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.CustomerEmail != "" {
		query = query.Where("customer_email = ?", q.CustomerEmail)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var orders []models.Order
	err := query.Preload("Items", orderedItems).Order("created_at desc").Find(&orders).Error
	return orders, err
}

// SavePaymentLink overwrites the provider references. Repeating the call
// with the same refs leaves the order unchanged.
func (r *gormOrderRepository) SavePaymentLink(ctx context.Context, id uuid.UUID, refs PaymentLinkRefs) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]any{
			"stripe_product_id":       refs.ProductID,
			"stripe_price_id":         refs.PriceID,
			"stripe_payment_link_id":  refs.PaymentLinkID,
			"stripe_payment_link_url": refs.URL,
			"updated_at":              time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&order, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Mutate locks the order row, lets fn decide the change and applies it with
// any restock in the same transaction.
func (r *gormOrderRepository) Mutate(ctx context.Context, id uuid.UUID, fn OrderMutation) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items", orderedItems).
			First(&order, "id = ?", id).Error; err != nil {
			return err
		}

		updates, restock, err := fn(&order)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		for _, line := range restock {
			if err := tx.Model(&models.Product{}).Where("id = ?", line.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", line.Quantity)).Error; err != nil {
				return err
			}
		}

		updates["updated_at"] = time.Now()
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("Items", orderedItems).First(&order, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
)

// RevenueTotals aggregates non-cancelled orders.
type RevenueTotals struct {
	Revenue      decimal.Decimal `gorm:"column:revenue"`
	Subtotal     decimal.Decimal `gorm:"column:subtotal"`
	Tax          decimal.Decimal `gorm:"column:tax"`
	Discount     decimal.Decimal `gorm:"column:discount"`
	Transactions int64           `gorm:"column:transactions"`
}

// PaymentMethodRevenue is revenue grouped by payment method.
type PaymentMethodRevenue struct {
	PaymentMethod string          `gorm:"column:payment_method" json:"payment_method"`
	Total         decimal.Decimal `gorm:"column:total" json:"total"`
	Count         int64           `gorm:"column:count" json:"count"`
}

// RevenueBucket is revenue grouped under a to_char period label.
type RevenueBucket struct {
	Period       string          `gorm:"column:period" json:"period"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
	Transactions int64           `gorm:"column:transactions" json:"transactions"`
}

// RevenueDay is revenue for one calendar day.
type RevenueDay struct {
	Date         time.Time       `gorm:"column:date" json:"date"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
	Transactions int64           `gorm:"column:transactions" json:"transactions"`
}

// RevenueRepository runs revenue aggregates over orders.
type RevenueRepository interface {
	Totals(ctx context.Context, from, to *time.Time) (RevenueTotals, error)
	ByPaymentMethod(ctx context.Context) ([]PaymentMethodRevenue, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
	Series(ctx context.Context, format string, from, to time.Time) ([]RevenueBucket, error)
	TopDays(ctx context.Context, from, to time.Time, limit int) ([]RevenueDay, error)
}

type gormRevenueRepository struct {
	db *gorm.DB
}

// NewRevenueRepository returns a gorm backed RevenueRepository.
func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &gormRevenueRepository{db: db}
}

func (r *gormRevenueRepository) revenueScope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled)
}

// Totals sums orders created in [from, to). Nil bounds are open.
func (r *gormRevenueRepository) Totals(ctx context.Context, from, to *time.Time) (RevenueTotals, error) {
	query := r.revenueScope(ctx).Select(`COALESCE(SUM(total), 0) AS revenue,
		COALESCE(SUM(subtotal), 0) AS subtotal,
		COALESCE(SUM(tax), 0) AS tax,
		COALESCE(SUM(discount), 0) AS discount,
		COUNT(*) AS transactions`)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var totals RevenueTotals
	err := query.Scan(&totals).Error
	return totals, err
}

func (r *gormRevenueRepository) ByPaymentMethod(ctx context.Context) ([]PaymentMethodRevenue, error) {
	var rows []PaymentMethodRevenue
	err := r.revenueScope(ctx).
		Select("payment_method, COALESCE(SUM(total), 0) AS total, COUNT(*) AS count").
		Group("payment_method").
		Order("total desc").
		Scan(&rows).Error
	return rows, err
}

func (r *gormRevenueRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.revenueScope(ctx).Order("created_at desc").Limit(limit).Find(&orders).Error
	return orders, err
}

// Series groups orders in [from, to) by to_char(created_at, format).
func (r *gormRevenueRepository) Series(ctx context.Context, format string, from, to time.Time) ([]RevenueBucket, error) {
	var rows []RevenueBucket
	err := r.revenueScope(ctx).
		Select("to_char(created_at, ?) AS period, COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS transactions", format).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("period").
		Order("period asc").
		Scan(&rows).Error
	return rows, err
}

func (r *gormRevenueRepository) TopDays(ctx context.Context, from, to time.Time, limit int) ([]RevenueDay, error) {
	var rows []RevenueDay
	err := r.revenueScope(ctx).
		Select("DATE(created_at) AS date, COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS transactions").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("date").
		Order("revenue desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/utils"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestPlace_InsufficientStockRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewOrderRepository(gormDB)
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Place(context.Background(), &models.Order{}, []repository.StockLine{{ProductID: productID, Quantity: 3}})

	var stockErr *repository.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, productID, stockErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_SecondLineShortRollsBackFirst(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewOrderRepository(gormDB)
	short := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Place(context.Background(), &models.Order{}, []repository.StockLine{
		{ProductID: uuid.New(), Quantity: 1},
		{ProductID: short, Quantity: 1},
	})

	var stockErr *repository.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, short, stockErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlace_DatabaseErrorRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Place(context.Background(), &models.Order{}, []repository.StockLine{{ProductID: uuid.New(), Quantity: 1}})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductList_CountsThenPagesWithSameFilters(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewProductRepository(gormDB)
	categoryID := uuid.New()
	active := true
	page := utils.NewPagination(2, 12, 12)
	where := regexp.QuoteMeta(`WHERE category_id = $1 AND is_active = $2 AND `) +
		`\(+` + regexp.QuoteMeta(`name ILIKE $3 OR description ILIKE $4 OR sku ILIKE $5`) + `\)+`
	like := `%50\% off%`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" `) + `.*` + where).
		WithArgs(categoryID, true, like, like, like).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" `) + `.*` + where + `.*` +
		regexp.QuoteMeta(`ORDER BY "price" DESC,id asc LIMIT $6 OFFSET $7`)).
		WithArgs(categoryID, true, like, like, like, 12, 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	products, total, err := repo.List(context.Background(), repository.ProductQuery{
		CategoryID: &categoryID,
		IsActive:   &active,
		Search:     " 50% off ",
		SortBy:     "price",
		SortDesc:   true,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})

	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, int64(30), total)
	assert.Equal(t, 3, utils.TotalPages(total, page.Limit))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductList_UnknownSortFallsBackToCreatedAt(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewProductRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" ORDER BY "created_at",id asc LIMIT $1`)).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := repo.List(context.Background(), repository.ProductQuery{SortBy: "password", Limit: 20})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdateValue_UnknownKey(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewSettingsRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "store_settings" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	setting, err := repo.UpdateValue(context.Background(), "missing_key", "1")
	assert.Nil(t, setting)
	assert.True(t, repository.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePaymentLink_UnknownOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.SavePaymentLink(context.Background(), uuid.New(), repository.PaymentLinkRefs{URL: "https://pay.example/x"})
	assert.True(t, repository.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevenueTotals(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewRevenueRepository(gormDB)

	rows := sqlmock.NewRows([]string{"revenue", "subtotal", "tax", "discount", "transactions"}).
		AddRow("320.50", "300.00", "20.50", "0", 4)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total), 0) AS revenue`)).
		WithArgs(models.OrderStatusCancelled).
		WillReturnRows(rows)

	totals, err := repo.Totals(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, totals.Revenue.Equal(decimal.RequireFromString("320.50")))
	assert.Equal(t, int64(4), totals.Transactions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminFindByEmail_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewAdminRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "admin_users"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	admin, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, admin)
	assert.True(t, repository.IsNotFound(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, repository.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, repository.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, repository.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, repository.IsUniqueViolation(errors.New("boom")))
}

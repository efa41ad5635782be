package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/repository"
)

const recentTransactionsLimit = 10

// RevenueTotalView is all-time revenue.
type RevenueTotalView struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	Transactions int64           `json:"transactions"`
	AverageValue decimal.Decimal `json:"averageValue"`
}

// RevenuePeriod is revenue within one calendar window. Growth is the
// percentage change against the previous window, zero when it had none.
type RevenuePeriod struct {
	Revenue      decimal.Decimal  `json:"revenue"`
	Transactions int64            `json:"transactions"`
	Growth       *decimal.Decimal `json:"growth,omitempty"`
}

// RecentTransaction is a trimmed order row for the dashboard.
type RecentTransaction struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"reference_number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"transaction_date"`
}

// RevenueOverview is the admin dashboard payload.
type RevenueOverview struct {
	Total              RevenueTotalView                  `json:"total"`
	Today              RevenuePeriod                     `json:"today"`
	Month              RevenuePeriod                     `json:"month"`
	Year               RevenuePeriod                     `json:"year"`
	PaymentMethods     []repository.PaymentMethodRevenue `json:"paymentMethods"`
	RecentTransactions []RecentTransaction               `json:"recentTransactions"`
}

// RevenueService aggregates non-cancelled orders for the dashboard.
type RevenueService struct {
	repo   repository.RevenueRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRevenueService(repo repository.RevenueRepository, logger *zap.Logger) *RevenueService {
	return &RevenueService{repo: repo, logger: logger, now: time.Now}
}

// Overview computes all-time, today, month and year figures in UTC.
func (s *RevenueService) Overview(ctx context.Context) (*RevenueOverview, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastMonth := monthStart.AddDate(0, -1, 0)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	nextYear := yearStart.AddDate(1, 0, 0)

	all, err := s.repo.Totals(ctx, nil, nil)
	if err != nil {
		return nil, storageError("Failed to fetch revenue overview", err)
	}

	windows := []struct{ from, to time.Time }{
		{today, tomorrow},
		{yesterday, today},
		{monthStart, nextMonth},
		{lastMonth, monthStart},
		{yearStart, nextYear},
	}
	sums := make([]repository.RevenueTotals, len(windows))
	for i, w := range windows {
		from, to := w.from, w.to
		if sums[i], err = s.repo.Totals(ctx, &from, &to); err != nil {
			return nil, storageError("Failed to fetch revenue overview", err)
		}
	}

	methods, err := s.repo.ByPaymentMethod(ctx)
	if err != nil {
		return nil, storageError("Failed to fetch revenue overview", err)
	}
	if methods == nil {
		methods = []repository.PaymentMethodRevenue{}
	}

	recent, err := s.repo.Recent(ctx, recentTransactionsLimit)
	if err != nil {
		return nil, storageError("Failed to fetch revenue overview", err)
	}
	transactions := make([]RecentTransaction, 0, len(recent))
	for _, o := range recent {
		transactions = append(transactions, RecentTransaction{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerName:  o.CustomerName,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
			CreatedAt:     o.CreatedAt,
		})
	}

	average := decimal.Zero
	if all.Transactions > 0 {
		average = all.Revenue.Div(decimal.NewFromInt(all.Transactions)).Round(2)
	}

	todayGrowth := growth(sums[0].Revenue, sums[1].Revenue)
	monthGrowth := growth(sums[2].Revenue, sums[3].Revenue)

	return &RevenueOverview{
		Total: RevenueTotalView{
			Revenue:      all.Revenue,
			Subtotal:     all.Subtotal,
			Tax:          all.Tax,
			Discount:     all.Discount,
			Transactions: all.Transactions,
			AverageValue: average,
		},
		Today:              RevenuePeriod{Revenue: sums[0].Revenue, Transactions: sums[0].Transactions, Growth: &todayGrowth},
		Month:              RevenuePeriod{Revenue: sums[2].Revenue, Transactions: sums[2].Transactions, Growth: &monthGrowth},
		Year:               RevenuePeriod{Revenue: sums[4].Revenue, Transactions: sums[4].Transactions},
		PaymentMethods:     methods,
		RecentTransactions: transactions,
	}, nil
}

func growth(current, previous decimal.Decimal) decimal.Decimal {
	if !previous.IsPositive() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

const (
	analyticsDateLayout = "2006-01-02"
	topDaysLimit        = 10
)

type analyticsPeriod struct {
	format   string
	lookback func(today time.Time) time.Time
}

var analyticsPeriods = map[string]analyticsPeriod{
	"day":   {"YYYY-MM-DD", func(t time.Time) time.Time { return t.AddDate(0, 0, -30) }},
	"week":  {`IYYY-"W"IW`, func(t time.Time) time.Time { return t.AddDate(0, 0, -7*12) }},
	"month": {"YYYY-MM", func(t time.Time) time.Time { return t.AddDate(0, -12, 0) }},
	"year":  {"YYYY", func(t time.Time) time.Time { return t.AddDate(-5, 0, 0) }},
}

// AnalyticsQuery selects the analytics bucket size and, optionally, an
// inclusive date range in YYYY-MM-DD.
type AnalyticsQuery struct {
	Period    string
	StartDate string
	EndDate   string
}

// AnalyticsAverages are per-day means over days that had orders.
type AnalyticsAverages struct {
	DailyRevenue      decimal.Decimal `json:"dailyRevenue"`
	DailyTransactions decimal.Decimal `json:"dailyTransactions"`
}

// RevenueAnalytics is the admin analytics payload.
type RevenueAnalytics struct {
	Period          string                     `json:"period"`
	From            time.Time                  `json:"from"`
	To              time.Time                  `json:"to"`
	RevenueOverTime []repository.RevenueBucket `json:"revenueOverTime"`
	TopDays         []repository.RevenueDay    `json:"topDays"`
	Averages        AnalyticsAverages          `json:"averages"`
}

// Analytics buckets non-cancelled revenue by day, ISO week, month or year.
// Without an explicit range the window reaches back 30 days, 12 weeks,
// 12 months or 5 years respectively. Unknown periods fall back to month.
func (s *RevenueService) Analytics(ctx context.Context, q AnalyticsQuery) (*RevenueAnalytics, error) {
	name := q.Period
	period, ok := analyticsPeriods[name]
	if !ok {
		name = "month"
		period = analyticsPeriods[name]
	}

	from, to, err := s.analyticsWindow(q, period)
	if err != nil {
		return nil, err
	}

	series, err := s.repo.Series(ctx, period.format, from, to)
	if err != nil {
		return nil, storageError("Failed to fetch revenue analytics", err)
	}
	daily := series
	if name != "day" {
		if daily, err = s.repo.Series(ctx, analyticsPeriods["day"].format, from, to); err != nil {
			return nil, storageError("Failed to fetch revenue analytics", err)
		}
	}
	top, err := s.repo.TopDays(ctx, from, to, topDaysLimit)
	if err != nil {
		return nil, storageError("Failed to fetch revenue analytics", err)
	}

	if series == nil {
		series = []repository.RevenueBucket{}
	}
	if top == nil {
		top = []repository.RevenueDay{}
	}

	return &RevenueAnalytics{
		Period:          name,
		From:            from,
		To:              to,
		RevenueOverTime: series,
		TopDays:         top,
		Averages:        dailyAverages(daily),
	}, nil
}

func (s *RevenueService) analyticsWindow(q AnalyticsQuery, period analyticsPeriod) (time.Time, time.Time, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if q.StartDate == "" && q.EndDate == "" {
		return period.lookback(today), today.AddDate(0, 0, 1), nil
	}
	if q.StartDate == "" || q.EndDate == "" {
		return time.Time{}, time.Time{}, validationError("startDate and endDate must be given together")
	}
	start, err := time.Parse(analyticsDateLayout, q.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, validationError("startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(analyticsDateLayout, q.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, validationError("endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, validationError("endDate must not be before startDate")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func dailyAverages(days []repository.RevenueBucket) AnalyticsAverages {
	if len(days) == 0 {
		return AnalyticsAverages{DailyRevenue: decimal.Zero, DailyTransactions: decimal.Zero}
	}
	revenue := decimal.Zero
	var transactions int64
	for _, d := range days {
		revenue = revenue.Add(d.Revenue)
		transactions += d.Transactions
	}
	n := decimal.NewFromInt(int64(len(days)))
	return AnalyticsAverages{
		DailyRevenue:      revenue.Div(n).Round(2),
		DailyTransactions: decimal.NewFromInt(transactions).Div(n).Round(2),
	}
}

package analytics

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/money"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type RepositoryAPI interface {
	FindExpenses(ctx context.Context, userID int64, w period.Window, f Filter) ([]Expense, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]Expense, error)
	TotalSpent(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetMonthlyBudget(ctx context.Context, userID int64, month string) (decimal.Decimal, bool, error)
	GetDefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error)
	AdminCounts(ctx context.Context, monthStart, activeSince time.Time) (*AdminCounts, error)
	RecentUsers(ctx context.Context, limit int) ([]UserSummary, error)
}

type ServiceAPI interface {
	GetOverview(ctx context.Context, userID int64, timeRange, category, paymentMethod string, now time.Time) (*OverviewReport, error)
	GetCategoryAnalytics(ctx context.Context, userID int64, timeRange string, now time.Time) (*CategoryReport, error)
	GetTrendAnalysis(ctx context.Context, userID int64, timeRange, granularity string, now time.Time) (*TrendReport, error)
	GetComparisonAnalytics(ctx context.Context, userID int64, period1, period2 string, now time.Time) (*ComparisonReport, error)
	GetDashboard(ctx context.Context, userID int64, now time.Time) (*Dashboard, error)
	GetAdminDashboard(ctx context.Context, now time.Time) (*AdminDashboard, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetOverview(ctx context.Context, userID int64, timeRange, category, paymentMethod string, now time.Time) (*OverviewReport, error) {
	if timeRange == "" {
		timeRange = period.DefaultRange
	}
	filter := Filter{Category: category, PaymentMethod: paymentMethod}.Normalize()
	window := period.ResolvePeriod(timeRange, now)
	previousWindow := period.Previous(window)
	months := period.TrailingMonths(now, trendMonths)

	var (
		current, previous, trailing []Expense
		budgets                     []decimal.Decimal
		previousBudget              decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = s.repo.FindExpenses(gctx, userID, window, filter)
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.repo.FindExpenses(gctx, userID, previousWindow, filter)
		return err
	})
	g.Go(func() (err error) {
		span := period.Window{Start: months[0].Start, End: months[len(months)-1].End}
		trailing, err = s.repo.FindExpenses(gctx, userID, span, filter)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.budgetsFor(gctx, userID, months)
		return err
	})
	g.Go(func() (err error) {
		previousBudget, err = s.applicableBudget(gctx, userID, period.MonthKey(previousWindow.End))
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build overview", "error", err, "user_id", userID, "time_range", timeRange)
		return nil, errors.NewInternalError("failed to build overview", err)
	}

	sum, prevSum := total(current), total(previous)
	budget := budgets[len(budgets)-1]

	days, prevDays := weekdayTotals(current), weekdayTotals(previous)
	highest := highestDay(days)
	payment, paymentCount := mostUsedPayment(current)
	avg, prevAvg := money.Average(sum, len(current)), money.Average(prevSum, len(previous))
	utilization := money.Percent(sum, budget)

	insights := Insights{
		HighestSpendingDay:        highest.String(),
		HighestSpendingDayChange:  money.Change(days[highest], prevDays[highest]),
		AverageTransaction:        avg,
		AverageTransactionChange:  money.Change(avg, prevAvg),
		MostUsedPayment:           payment,
		MostUsedPaymentPercentage: money.Percent(decimal.NewFromInt(int64(paymentCount)), decimal.NewFromInt(int64(len(current)))),
		BudgetUtilization:         utilization,
		BudgetUtilizationChange:   money.RoundFloat(utilization - money.Percent(prevSum, previousBudget)),
	}

	trends := make([]MonthlyTrend, 0, len(months))
	for i, m := range months {
		spent := decimal.Zero
		for _, e := range trailing {
			if m.Contains(e.Date) {
				spent = spent.Add(e.Amount)
			}
		}
		trends = append(trends, MonthlyTrend{Month: period.MonthKey(m.Start), Expenses: spent, Budget: budgets[i]})
	}

	return &OverviewReport{
		Window:            reportWindow(timeRange, period.Label(timeRange), window),
		Insights:          insights,
		TotalExpenses:     sum,
		TransactionCount:  len(current),
		CategoryBreakdown: shares(current, previous),
		TopExpenses:       topExpenses(current, topExpenseLimit),
		MonthlyTrends:     trends,
	}, nil
}

func (s *Service) GetCategoryAnalytics(ctx context.Context, userID int64, timeRange string, now time.Time) (*CategoryReport, error) {
	if timeRange == "" {
		timeRange = period.DefaultRange
	}
	window := period.ResolvePeriod(timeRange, now)

	current, previous, err := s.pair(ctx, userID, window, period.Previous(window))
	if err != nil {
		s.logger.Error("failed to build category analytics", "error", err, "user_id", userID, "time_range", timeRange)
		return nil, errors.NewInternalError("failed to build category analytics", err)
	}

	sum := total(current)
	prev := categoryMap(previous)
	grouped := groupByCategory(current)

	categories := make([]CategoryDetail, 0)
	for _, c := range byCategory(current) {
		trend, value := trendOf(c.amount, prev[c.name])
		items := grouped[c.name]
		categories = append(categories, CategoryDetail{
			Category:           c.name,
			TotalAmount:        c.amount,
			TransactionCount:   c.count,
			AverageTransaction: money.Average(c.amount, c.count),
			Percentage:         money.Percent(c.amount, sum),
			Trend:              trend,
			TrendValue:         value,
			Color:              CategoryColor(c.name),
			TopMerchants:       topMerchants(items, topMerchantLimit),
			DayBreakdown:       dayBreakdown(items),
		})
	}

	return &CategoryReport{
		Window:     reportWindow(timeRange, period.Label(timeRange), window),
		Categories: categories,
	}, nil
}

func (s *Service) GetTrendAnalysis(ctx context.Context, userID int64, timeRange, granularity string, now time.Time) (*TrendReport, error) {
	if timeRange == "" {
		timeRange = period.Last6Months
	}
	granularity = normalizeGranularity(granularity)
	window := period.ResolvePeriod(timeRange, now)

	var (
		expenses []Expense
		budget   decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = s.repo.FindExpenses(gctx, userID, window, Filter{})
		return err
	})
	g.Go(func() (err error) {
		budget, err = s.applicableBudget(gctx, userID, period.MonthKey(now))
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build trend analysis", "error", err, "user_id", userID, "time_range", timeRange)
		return nil, errors.NewInternalError("failed to build trend analysis", err)
	}

	return &TrendReport{
		Window:      reportWindow(timeRange, period.Label(timeRange), window),
		Granularity: granularity,
		Series:      series(expenses, granularity, budget),
		Predictions: Predictions{NextMonth: Prediction{Status: PredictionNotComputed}},
		Patterns:    patterns(expenses, patternLimit),
	}, nil
}

func (s *Service) GetComparisonAnalytics(ctx context.Context, userID int64, period1, period2 string, now time.Time) (*ComparisonReport, error) {
	if period1 == "" {
		period1 = period.ThisMonth
	}
	if period2 == "" {
		period2 = period.LastMonth
	}
	w1, w2 := period.ResolvePeriod(period1, now), period.ResolvePeriod(period2, now)

	first, second, err := s.pair(ctx, userID, w1, w2)
	if err != nil {
		s.logger.Error("failed to build comparison", "error", err, "user_id", userID, "period1", period1, "period2", period2)
		return nil, errors.NewInternalError("failed to build comparison", err)
	}

	t1, t2 := total(first), total(second)
	increased, decreased := categoryMovement(first, second)

	return &ComparisonReport{
		Period1: summarize(period1, w1, first),
		Period2: summarize(period2, w2, second),
		Comparison: Comparison{
			ExpenseDifference:       t1.Sub(t2),
			ExpensePercentageChange: money.Change(t1, t2),
			TransactionDifference:   len(first) - len(second),
			CategoriesIncreased:     increased,
			CategoriesDecreased:     decreased,
		},
	}, nil
}

func (s *Service) GetDashboard(ctx context.Context, userID int64, now time.Time) (*Dashboard, error) {
	thisMonth := period.ResolvePeriod(period.ThisMonth, now)
	lastMonth := period.ResolvePeriod(period.LastMonth, now)
	months := period.TrailingMonths(now, trendMonths)

	var (
		current, previous, trailing, recent []Expense
		spent                               decimal.Decimal
		budgets                             []decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = s.repo.FindExpenses(gctx, userID, thisMonth, Filter{})
		return err
	})
	g.Go(func() (err error) {
		previous, err = s.repo.FindExpenses(gctx, userID, lastMonth, Filter{})
		return err
	})
	g.Go(func() (err error) {
		span := period.Window{Start: months[0].Start, End: months[len(months)-1].End}
		trailing, err = s.repo.FindExpenses(gctx, userID, span, Filter{})
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.RecentExpenses(gctx, userID, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		spent, err = s.repo.TotalSpent(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.budgetsFor(gctx, userID, months)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build dashboard", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to build dashboard", err)
	}

	this, last := total(current), total(previous)
	budget := budgets[len(budgets)-1]
	change := money.Change(this, last)
	changeType := "increase"
	if change < 0 {
		changeType = "decrease"
		change = -change
	}

	trends := make([]MonthlyTrend, 0, len(months))
	for i, m := range months {
		sum := decimal.Zero
		for _, e := range trailing {
			if m.Contains(e.Date) {
				sum = sum.Add(e.Amount)
			}
		}
		trends = append(trends, MonthlyTrend{Month: period.MonthKey(m.Start), Expenses: sum, Budget: budgets[i]})
	}

	recentViews := make([]ExpenseView, 0, len(recent))
	for _, e := range recent {
		recentViews = append(recentViews, viewOf(e))
	}

	return &Dashboard{
		Stats: DashboardStats{
			TotalSpent:          spent,
			ThisMonthExpenses:   this,
			LastMonthExpenses:   last,
			ThisMonthChange:     change,
			ThisMonthChangeType: changeType,
			AverageDaily:        money.Average(this, now.Day()),
			Budget:              budget,
			BudgetLeft:          budget.Sub(this),
			BudgetPercentage:    money.Percent(this, budget),
		},
		RecentExpenses:    recentViews,
		CategoryBreakdown: shares(current, previous),
		MonthlyTrends:     trends,
	}, nil
}

func (s *Service) GetAdminDashboard(ctx context.Context, now time.Time) (*AdminDashboard, error) {
	monthStart := period.Month(now).Start
	activeSince := now.AddDate(0, 0, -30)

	var (
		counts *AdminCounts
		users  []UserSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts, err = s.repo.AdminCounts(gctx, monthStart, activeSince)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.repo.RecentUsers(gctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build admin dashboard", "error", err)
		return nil, errors.NewInternalError("failed to build admin dashboard", err)
	}
	if users == nil {
		users = []UserSummary{}
	}

	return &AdminDashboard{
		Stats: AdminStats{
			TotalUsers:            counts.TotalUsers,
			NewUsersThisMonth:     counts.TotalUsers - counts.UsersBeforeMonth,
			ActiveUsers:           counts.ActiveUsers,
			ActiveUsersPercentage: money.Percent(decimal.NewFromInt(counts.ActiveUsers), decimal.NewFromInt(counts.TotalUsers)),
			TotalTransactions:     counts.TotalTransactions,
		},
		RecentUsers: users,
	}, nil
}

// pair loads two windows concurrently.
func (s *Service) pair(ctx context.Context, userID int64, a, b period.Window) (first, second []Expense, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		first, err = s.repo.FindExpenses(gctx, userID, a, Filter{})
		return err
	})
	g.Go(func() (err error) {
		second, err = s.repo.FindExpenses(gctx, userID, b, Filter{})
		return err
	})
	err = g.Wait()
	return first, second, err
}

// applicableBudget is the month's own budget, else the user default, else 0.
func (s *Service) applicableBudget(ctx context.Context, userID int64, month string) (decimal.Decimal, error) {
	b, ok, err := s.repo.GetMonthlyBudget(ctx, userID, month)
	if err != nil {
		return decimal.Zero, err
	}
	if ok {
		return b, nil
	}

	def, err := s.repo.GetDefaultBudget(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return def, nil
}

func (s *Service) budgetsFor(ctx context.Context, userID int64, months []period.Window) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(months))
	for _, m := range months {
		b, err := s.applicableBudget(ctx, userID, period.MonthKey(m.Start))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func summarize(token string, w period.Window, expenses []Expense) PeriodSummary {
	return PeriodSummary{
		Label:             period.Label(token),
		StartDate:         w.Start.Format(period.DateLayout),
		EndDate:           w.End.Format(period.DateLayout),
		TotalExpenses:     total(expenses),
		CategoryBreakdown: categoryAmounts(expenses),
		TransactionCount:  len(expenses),
	}
}

func normalizeGranularity(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case GranularityWeekly:
		return GranularityWeekly
	case GranularityMonthly:
		return GranularityMonthly
	default:
		return GranularityDaily
	}
}

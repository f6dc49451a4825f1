package analytics_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/analytics"
	"github.com/frahmantamala/fintrack/internal/period"
)

type mockAnalyticsRepository struct {
	expenses []analytics.Expense
	budgets  map[string]decimal.Decimal
	defaults map[int64]decimal.Decimal
	counts   analytics.AdminCounts
	users    []analytics.UserSummary
	failWith error
}

func (m *mockAnalyticsRepository) FindExpenses(ctx context.Context, userID int64, w period.Window, f analytics.Filter) ([]analytics.Expense, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []analytics.Expense
	for _, e := range m.expenses {
		if !w.Contains(e.Date) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.PaymentMethod != "" && e.PaymentMethod != f.PaymentMethod {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockAnalyticsRepository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]analytics.Expense, error) {
	out := append([]analytics.Expense(nil), m.expenses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAnalyticsRepository) TotalSpent(ctx context.Context, userID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range m.expenses {
		sum = sum.Add(e.Amount)
	}
	return sum, nil
}

func (m *mockAnalyticsRepository) GetMonthlyBudget(ctx context.Context, userID int64, month string) (decimal.Decimal, bool, error) {
	b, ok := m.budgets[fmt.Sprintf("%d/%s", userID, month)]
	return b, ok, nil
}

func (m *mockAnalyticsRepository) GetDefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	d, ok := m.defaults[userID]
	if !ok {
		return decimal.Zero, errors.ErrUserNotFound
	}
	return d, nil
}

func (m *mockAnalyticsRepository) AdminCounts(ctx context.Context, monthStart, activeSince time.Time) (*analytics.AdminCounts, error) {
	c := m.counts
	return &c, nil
}

func (m *mockAnalyticsRepository) RecentUsers(ctx context.Context, limit int) ([]analytics.UserSummary, error) {
	return m.users, nil
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func spend(id int64, date time.Time, category, description, method string, amount int64) analytics.Expense {
	return analytics.Expense{
		ID:            id,
		Date:          date,
		Description:   description,
		Category:      category,
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: method,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var _ = Describe("AnalyticsService", func() {
	var (
		repo    *mockAnalyticsRepository
		service *analytics.Service
		ctx     context.Context
		now     time.Time
	)

	BeforeEach(func() {
		repo = &mockAnalyticsRepository{
			budgets:  map[string]decimal.Decimal{},
			defaults: map[int64]decimal.Decimal{1: decimal.NewFromInt(1000)},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = analytics.NewService(repo, logger)
		ctx = context.Background()
		// Sunday, the middle of March
		now = time.Date(2026, time.March, 15, 18, 30, 0, 0, time.UTC)
	})

	Describe("GetOverview", func() {
		BeforeEach(func() {
			repo.expenses = []analytics.Expense{
				spend(1, day(time.February, 20), "Food", "Bistro dinner", "UPI", 200),
				spend(2, day(time.March, 2), "Food", "Bistro lunch", "UPI", 250),
				spend(3, day(time.March, 4), "Food", "Bakery bread", "UPI", 150),
				spend(4, day(time.March, 6), "Travel", "Train ticket", "Credit Card", 200),
			}
			repo.budgets["1/2026-03"] = decimal.NewFromInt(1200)
		})

		It("breaks the window down by category, largest first", func() {
			// When
			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalExpenses.String()).To(Equal("600"))
			Expect(report.TransactionCount).To(Equal(3))
			Expect(report.CategoryBreakdown).To(HaveLen(2))

			food, travel := report.CategoryBreakdown[0], report.CategoryBreakdown[1]
			Expect(food.Category).To(Equal("Food"))
			Expect(food.Amount.String()).To(Equal("400"))
			Expect(food.Percentage).To(Equal(66.67))
			Expect(food.Color).To(Equal(analytics.FallbackColor))
			Expect(travel.Category).To(Equal("Travel"))
			Expect(travel.Amount.String()).To(Equal("200"))
			Expect(travel.Percentage).To(Equal(33.33))
			Expect(travel.Color).To(Equal("#EF4444"))

			sum := decimal.Zero
			for _, c := range report.CategoryBreakdown {
				sum = sum.Add(c.Amount)
			}
			Expect(sum.Equal(report.TotalExpenses)).To(BeTrue())
		})

		It("derives insights against the previous window of equal length", func() {
			// When
			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			in := report.Insights
			Expect(in.HighestSpendingDay).To(Equal("Monday"))
			Expect(in.AverageTransaction.String()).To(Equal("200"))
			Expect(in.AverageTransactionChange).To(Equal(0.0))
			Expect(in.MostUsedPayment).To(Equal("UPI"))
			Expect(in.MostUsedPaymentPercentage).To(Equal(66.67))
			Expect(in.BudgetUtilization).To(Equal(50.0))
			Expect(in.BudgetUtilizationChange).To(Equal(30.0))

			food := report.CategoryBreakdown[0]
			Expect(food.Trend).To(Equal(analytics.TrendUp))
			Expect(food.TrendValue).To(Equal(100.0))
			travel := report.CategoryBreakdown[1]
			Expect(travel.Trend).To(Equal(analytics.TrendUp))
			Expect(travel.TrendValue).To(Equal(0.0))
		})

		It("returns six trailing months with their budgets", func() {
			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.MonthlyTrends).To(HaveLen(6))
			Expect(report.MonthlyTrends[0].Month).To(Equal("2025-10"))
			feb, mar := report.MonthlyTrends[4], report.MonthlyTrends[5]
			Expect(feb.Expenses.String()).To(Equal("200"))
			Expect(feb.Budget.String()).To(Equal("1000"))
			Expect(mar.Expenses.String()).To(Equal("600"))
			Expect(mar.Budget.String()).To(Equal("1200"))
		})

		It("ranks top expenses by amount", func() {
			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.TopExpenses).To(HaveLen(3))
			Expect(report.TopExpenses[0].ID).To(Equal(int64(2)))
			Expect(report.TopExpenses[0].Date).To(Equal("2026-03-02"))
			Expect(report.TopExpenses[1].ID).To(Equal(int64(4)))
		})

		It("applies category and payment method filters", func() {
			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "Travel", "all", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalExpenses.String()).To(Equal("200"))
			Expect(report.CategoryBreakdown).To(HaveLen(1))
			Expect(report.CategoryBreakdown[0].Percentage).To(Equal(100.0))
		})

		It("favours Credit Card when payment counts tie", func() {
			repo.expenses = []analytics.Expense{
				spend(1, day(time.March, 2), "Food", "Cafe", "Cash", 10),
				spend(2, day(time.March, 3), "Food", "Cafe", "Credit Card", 10),
			}

			report, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Insights.MostUsedPayment).To(Equal("Credit Card"))
			Expect(report.Insights.MostUsedPaymentPercentage).To(Equal(50.0))
		})

		It("degrades to zeros on an empty window", func() {
			// Given
			repo.expenses = nil
			delete(repo.defaults, 1)

			// When
			report, err := service.GetOverview(ctx, 1, period.Last7Days, "", "", now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Insights.AverageTransaction.IsZero()).To(BeTrue())
			Expect(report.Insights.BudgetUtilization).To(Equal(0.0))
			Expect(report.Insights.HighestSpendingDay).To(Equal("Monday"))
			Expect(report.Insights.MostUsedPayment).To(Equal("Credit Card"))
			Expect(report.Insights.MostUsedPaymentPercentage).To(Equal(0.0))
			Expect(report.CategoryBreakdown).To(BeEmpty())
			Expect(report.TopExpenses).To(BeEmpty())

			raw, err := json.Marshal(report)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"categoryBreakdown":[]`))
		})

		It("falls back to the default range for unknown tokens", func() {
			report, err := service.GetOverview(ctx, 1, "fortnight", "", "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Window.StartDate).To(Equal("2026-02-13"))
			Expect(report.Window.EndDate).To(Equal("2026-03-15"))
		})

		It("wraps store failures as internal errors", func() {
			repo.failWith = stderrors.New("connection reset")

			_, err := service.GetOverview(ctx, 1, period.ThisMonth, "", "", now)

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeInternal))
		})
	})

	Describe("GetCategoryAnalytics", func() {
		It("ranks merchants and fills every weekday", func() {
			// Given
			repo.expenses = []analytics.Expense{
				spend(1, day(time.March, 2), "Food & Dining", "Starbucks latte", "UPI", 5),
				spend(2, day(time.March, 3), "Food & Dining", "Starbucks muffin", "UPI", 7),
				spend(3, day(time.March, 4), "Food & Dining", "Chipotle bowl", "UPI", 20),
				spend(4, day(time.March, 5), "Shopping", "Mall shoes", "UPI", 8),
			}

			// When
			report, err := service.GetCategoryAnalytics(ctx, 1, period.ThisMonth, now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Categories).To(HaveLen(2))

			food := report.Categories[0]
			Expect(food.Category).To(Equal("Food & Dining"))
			Expect(food.TotalAmount.String()).To(Equal("32"))
			Expect(food.TransactionCount).To(Equal(3))
			Expect(food.AverageTransaction.String()).To(Equal("10.67"))
			Expect(food.Percentage).To(Equal(80.0))
			Expect(food.Color).To(Equal("#6366F1"))
			Expect(food.TopMerchants).To(HaveLen(2))
			Expect(food.TopMerchants[0].Name).To(Equal("Chipotle"))
			Expect(food.TopMerchants[1].Name).To(Equal("Starbucks"))
			Expect(food.TopMerchants[1].Count).To(Equal(2))
			Expect(food.TopMerchants[1].Amount.String()).To(Equal("12"))
			Expect(food.DayBreakdown.Monday.String()).To(Equal("5"))
			Expect(food.DayBreakdown.Tuesday.String()).To(Equal("7"))
			Expect(food.DayBreakdown.Wednesday.String()).To(Equal("20"))
			Expect(food.DayBreakdown.Sunday.IsZero()).To(BeTrue())

			raw, err := json.Marshal(food.DayBreakdown)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring(`"Sunday"`))
		})
	})

	Describe("GetTrendAnalysis", func() {
		BeforeEach(func() {
			repo.expenses = []analytics.Expense{
				spend(1, day(time.March, 2), "Subscription", "Netflix", "Credit Card", 15),
				spend(2, day(time.March, 2), "Food", "Groceries", "UPI", 50),
				spend(3, day(time.March, 4), "Food", "Bakery", "UPI", 10),
				spend(4, day(time.March, 9), "Subscription", "Netflix", "Credit Card", 16),
			}
		})

		It("builds a daily series with a flat income line", func() {
			report, err := service.GetTrendAnalysis(ctx, 1, period.ThisMonth, "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Granularity).To(Equal(analytics.GranularityDaily))
			Expect(report.Series).To(HaveLen(3))
			Expect(report.Series[0].Date).To(Equal("2026-03-02"))
			Expect(report.Series[0].Expenses.String()).To(Equal("65"))
			Expect(report.Series[0].Income.String()).To(Equal("33.33"))
			Expect(report.Series[2].Date).To(Equal("2026-03-09"))
			Expect(report.Predictions.NextMonth.Status).To(Equal(analytics.PredictionNotComputed))
		})

		It("buckets weeks on Monday", func() {
			report, err := service.GetTrendAnalysis(ctx, 1, period.ThisMonth, "weekly", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Series).To(HaveLen(2))
			Expect(report.Series[0].Date).To(Equal("2026-03-02"))
			Expect(report.Series[0].Expenses.String()).To(Equal("75"))
			Expect(report.Series[0].Income.String()).To(Equal("233.33"))
		})

		It("buckets months on the first", func() {
			report, err := service.GetTrendAnalysis(ctx, 1, period.ThisMonth, "monthly", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Series).To(HaveLen(1))
			Expect(report.Series[0].Date).To(Equal("2026-03-01"))
			Expect(report.Series[0].Income.String()).To(Equal("1033.33"))
		})

		It("detects repeated descriptions as recurring patterns", func() {
			report, err := service.GetTrendAnalysis(ctx, 1, period.ThisMonth, "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Patterns).To(HaveLen(1))
			p := report.Patterns[0]
			Expect(p.Description).To(Equal("Netflix"))
			Expect(p.Amount.String()).To(Equal("16"))
			Expect(p.Occurrences).To(Equal(2))
			Expect(p.NextDate).To(Equal("2026-04-08"))
		})

		It("caps patterns at five", func() {
			repo.expenses = nil
			for i := 0; i < 7; i++ {
				desc := fmt.Sprintf("Bill %d", i)
				repo.expenses = append(repo.expenses,
					spend(int64(2*i+1), day(time.March, 1+i), "Utilities", desc, "UPI", 10),
					spend(int64(2*i+2), day(time.March, 8+i), "Utilities", desc, "UPI", 10),
				)
			}

			report, err := service.GetTrendAnalysis(ctx, 1, period.ThisMonth, "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Patterns).To(HaveLen(5))
			Expect(report.Patterns[0].Description).To(Equal("Bill 0"))
		})
	})

	Describe("GetComparisonAnalytics", func() {
		It("reports the difference and percentage change between periods", func() {
			// Given
			repo.expenses = []analytics.Expense{
				spend(1, day(time.February, 10), "Food", "Dinner", "UPI", 400),
				spend(2, day(time.March, 3), "Food", "Lunch", "UPI", 300),
				spend(3, day(time.March, 5), "Travel", "Taxi", "UPI", 200),
			}

			// When
			report, err := service.GetComparisonAnalytics(ctx, 1, period.ThisMonth, period.LastMonth, now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Period1.TotalExpenses.String()).To(Equal("500"))
			Expect(report.Period1.Label).To(Equal("This Month"))
			Expect(report.Period2.TotalExpenses.String()).To(Equal("400"))
			Expect(report.Period2.StartDate).To(Equal("2026-02-01"))
			Expect(report.Period2.EndDate).To(Equal("2026-02-28"))

			c := report.Comparison
			Expect(c.ExpenseDifference.String()).To(Equal("100"))
			Expect(c.ExpensePercentageChange).To(Equal(25.0))
			Expect(c.TransactionDifference).To(Equal(1))
			Expect(c.CategoriesIncreased).To(Equal([]string{"Travel"}))
			Expect(c.CategoriesDecreased).To(Equal([]string{"Food"}))
		})

		It("reports zero change when the second period is empty", func() {
			repo.expenses = []analytics.Expense{spend(1, day(time.March, 3), "Food", "Lunch", "UPI", 300)}

			report, err := service.GetComparisonAnalytics(ctx, 1, "", "", now)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Comparison.ExpensePercentageChange).To(Equal(0.0))
			Expect(report.Comparison.CategoriesDecreased).To(BeEmpty())
		})
	})

	Describe("GetDashboard", func() {
		It("summarises this month against last month and the budget", func() {
			// Given
			repo.expenses = []analytics.Expense{
				spend(1, day(time.January, 5), "Food", "Lunch", "UPI", 50),
				spend(2, day(time.February, 10), "Food", "Dinner", "UPI", 400),
				spend(3, day(time.March, 3), "Food", "Lunch", "UPI", 600),
			}

			// When
			dash, err := service.GetDashboard(ctx, 1, now)

			// Then
			Expect(err).NotTo(HaveOccurred())
			s := dash.Stats
			Expect(s.TotalSpent.String()).To(Equal("1050"))
			Expect(s.ThisMonthExpenses.String()).To(Equal("600"))
			Expect(s.LastMonthExpenses.String()).To(Equal("400"))
			Expect(s.ThisMonthChange).To(Equal(50.0))
			Expect(s.ThisMonthChangeType).To(Equal("increase"))
			Expect(s.AverageDaily.String()).To(Equal("40"))
			Expect(s.BudgetLeft.String()).To(Equal("400"))
			Expect(s.BudgetPercentage).To(Equal(60.0))
			Expect(dash.RecentExpenses[0].ID).To(Equal(int64(3)))
			Expect(dash.MonthlyTrends).To(HaveLen(6))
			Expect(dash.CategoryBreakdown).To(HaveLen(1))
		})

		It("marks a drop as a decrease with a positive magnitude", func() {
			repo.expenses = []analytics.Expense{
				spend(1, day(time.February, 10), "Food", "Dinner", "UPI", 400),
				spend(2, day(time.March, 3), "Food", "Lunch", "UPI", 100),
			}

			dash, err := service.GetDashboard(ctx, 1, now)

			Expect(err).NotTo(HaveOccurred())
			Expect(dash.Stats.ThisMonthChange).To(Equal(75.0))
			Expect(dash.Stats.ThisMonthChangeType).To(Equal("decrease"))
		})
	})

	Describe("GetAdminDashboard", func() {
		It("derives new and active user figures", func() {
			repo.counts = analytics.AdminCounts{TotalUsers: 10, UsersBeforeMonth: 7, ActiveUsers: 4, TotalTransactions: 55}

			dash, err := service.GetAdminDashboard(ctx, now)

			Expect(err).NotTo(HaveOccurred())
			Expect(dash.Stats.NewUsersThisMonth).To(Equal(int64(3)))
			Expect(dash.Stats.ActiveUsersPercentage).To(Equal(40.0))
			Expect(dash.Stats.TotalTransactions).To(Equal(int64(55)))
			Expect(dash.RecentUsers).NotTo(BeNil())
		})
	})
})

package analytics

import (
	"github.com/shopspring/decimal"
)

type ReportWindow struct {
	TimeRange string `json:"timeRange"`
	Label     string `json:"label"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Insights struct {
	HighestSpendingDay        string          `json:"highestSpendingDay"`
	HighestSpendingDayChange  float64         `json:"highestSpendingDayChange"`
	AverageTransaction        decimal.Decimal `json:"averageTransaction"`
	AverageTransactionChange  float64         `json:"averageTransactionChange"`
	MostUsedPayment           string          `json:"mostUsedPayment"`
	MostUsedPaymentPercentage float64         `json:"mostUsedPaymentPercentage"`
	BudgetUtilization         float64         `json:"budgetUtilization"`
	BudgetUtilizationChange   float64         `json:"budgetUtilizationChange"`
}

type CategoryShare struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Trend      string          `json:"trend"`
	TrendValue float64         `json:"trendValue"`
	Color      string          `json:"color"`
}

type ExpenseView struct {
	ID            int64           `json:"id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type MonthlyTrend struct {
	Month    string          `json:"month"`
	Expenses decimal.Decimal `json:"expenses"`
	Budget   decimal.Decimal `json:"budget"`
}

type OverviewReport struct {
	Window            ReportWindow    `json:"window"`
	Insights          Insights        `json:"insights"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	TransactionCount  int             `json:"transactionCount"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	TopExpenses       []ExpenseView   `json:"topExpenses"`
	MonthlyTrends     []MonthlyTrend  `json:"monthlyTrends"`
}

type Merchant struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// DayBreakdown keeps all seven weekdays, zero filled, in calendar order.
type DayBreakdown struct {
	Monday    decimal.Decimal `json:"Monday"`
	Tuesday   decimal.Decimal `json:"Tuesday"`
	Wednesday decimal.Decimal `json:"Wednesday"`
	Thursday  decimal.Decimal `json:"Thursday"`
	Friday    decimal.Decimal `json:"Friday"`
	Saturday  decimal.Decimal `json:"Saturday"`
	Sunday    decimal.Decimal `json:"Sunday"`
}

type CategoryDetail struct {
	Category           string          `json:"category"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	TransactionCount   int             `json:"transactionCount"`
	AverageTransaction decimal.Decimal `json:"averageTransaction"`
	Percentage         float64         `json:"percentage"`
	Trend              string          `json:"trend"`
	TrendValue         float64         `json:"trendValue"`
	Color              string          `json:"color"`
	TopMerchants       []Merchant      `json:"topMerchants"`
	DayBreakdown       DayBreakdown    `json:"dayBreakdown"`
}

type CategoryReport struct {
	Window     ReportWindow     `json:"window"`
	Categories []CategoryDetail `json:"categories"`
}

type TrendPoint struct {
	Date     string          `json:"date"`
	Expenses decimal.Decimal `json:"expenses"`
	Income   decimal.Decimal `json:"income"`
}

type Prediction struct {
	Status string `json:"status"`
}

type Predictions struct {
	NextMonth Prediction `json:"nextMonth"`
}

type Pattern struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   string          `json:"frequency"`
	Occurrences int             `json:"occurrences"`
	NextDate    string          `json:"nextDate"`
}

type TrendReport struct {
	Window      ReportWindow `json:"window"`
	Granularity string       `json:"granularity"`
	Series      []TrendPoint `json:"series"`
	Predictions Predictions  `json:"predictions"`
	Patterns    []Pattern    `json:"patterns"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type PeriodSummary struct {
	Label             string           `json:"label"`
	StartDate         string           `json:"startDate"`
	EndDate           string           `json:"endDate"`
	TotalExpenses     decimal.Decimal  `json:"totalExpenses"`
	CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
	TransactionCount  int              `json:"transactionCount"`
}

type Comparison struct {
	ExpenseDifference       decimal.Decimal `json:"expenseDifference"`
	ExpensePercentageChange float64         `json:"expensePercentageChange"`
	TransactionDifference   int             `json:"transactionDifference"`
	CategoriesIncreased     []string        `json:"categoriesIncreased"`
	CategoriesDecreased     []string        `json:"categoriesDecreased"`
}

type ComparisonReport struct {
	Period1    PeriodSummary `json:"period1"`
	Period2    PeriodSummary `json:"period2"`
	Comparison Comparison    `json:"comparison"`
}

type DashboardStats struct {
	TotalSpent          decimal.Decimal `json:"totalSpent"`
	ThisMonthExpenses   decimal.Decimal `json:"thisMonthExpenses"`
	LastMonthExpenses   decimal.Decimal `json:"lastMonthExpenses"`
	ThisMonthChange     float64         `json:"thisMonthChange"`
	ThisMonthChangeType string          `json:"thisMonthChangeType"`
	AverageDaily        decimal.Decimal `json:"averageDaily"`
	Budget              decimal.Decimal `json:"budget"`
	BudgetLeft          decimal.Decimal `json:"budgetLeft"`
	BudgetPercentage    float64         `json:"budgetPercentage"`
}

type Dashboard struct {
	Stats             DashboardStats  `json:"stats"`
	RecentExpenses    []ExpenseView   `json:"recentExpenses"`
	CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	MonthlyTrends     []MonthlyTrend  `json:"monthlyTrends"`
}

type AdminStats struct {
	TotalUsers            int64   `json:"totalUsers"`
	NewUsersThisMonth     int64   `json:"newUsersThisMonth"`
	ActiveUsers           int64   `json:"activeUsers"`
	ActiveUsersPercentage float64 `json:"activeUsersPercentage"`
	TotalTransactions     int64   `json:"totalTransactions"`
}

type AdminDashboard struct {
	Stats       AdminStats    `json:"stats"`
	RecentUsers []UserSummary `json:"recentUsers"`
}

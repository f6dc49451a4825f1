// Package analytics builds read-only spending reports over a user's expenses.
package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"

	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"

	PredictionNotComputed = "not_computed"

	// defaultPaymentMethod wins ties for the most used payment method.
	defaultPaymentMethod = "Credit Card"
	trendMonths          = 6
	topExpenseLimit      = 10
	topMerchantLimit     = 5
	patternLimit         = 5
	recentLimit          = 10
	patternInterval      = 30 * 24 * time.Hour
)

// weekOrder is the enumeration order used for weekday reports and ties.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Expense is the read-model row the aggregator works on.
type Expense struct {
	ID            int64           `db:"id"`
	Date          time.Time       `db:"expense_date"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
}

// Filter narrows the expenses of a window. Empty fields and "all" match everything.
type Filter struct {
	Category      string
	PaymentMethod string
}

func (f Filter) Normalize() Filter {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "all") {
			return ""
		}
		return s
	}
	return Filter{Category: clean(f.Category), PaymentMethod: clean(f.PaymentMethod)}
}

// AdminCounts are the platform-wide numbers behind the admin dashboard.
type AdminCounts struct {
	TotalUsers        int64 `db:"total_users"`
	UsersBeforeMonth  int64 `db:"users_before_month"`
	ActiveUsers       int64 `db:"active_users"`
	TotalTransactions int64 `db:"total_transactions"`
}

type UserSummary struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

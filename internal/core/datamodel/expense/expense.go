package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one ledger row. Materialized rows carry the source rule marker;
// the unique index on it guarantees one row per rule and period.
type Expense struct {
	ID             int64           `gorm:"primaryKey"`
	UserID         int64           `gorm:"column:user_id;not null;index:idx_expenses_user_date,priority:1;uniqueIndex:idx_expenses_source_rule,priority:1"`
	ExpenseDate    time.Time       `gorm:"column:expense_date;type:date;not null;index:idx_expenses_user_date,priority:2"`
	Description    string          `gorm:"column:description;not null"`
	Category       string          `gorm:"column:category;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	PaymentMethod  string          `gorm:"column:payment_method;not null"`
	Notes          *string         `gorm:"column:notes"`
	CreditCardID   *int64          `gorm:"column:credit_card_id;index"`
	SourceRuleType *string         `gorm:"column:source_rule_type;uniqueIndex:idx_expenses_source_rule,priority:2"`
	SourceRuleID   *int64          `gorm:"column:source_rule_id;uniqueIndex:idx_expenses_source_rule,priority:3"`
	SourcePeriod   *string         `gorm:"column:source_period;uniqueIndex:idx_expenses_source_rule,priority:4"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

type MonthlyBudget struct {
	ID        int64           `gorm:"primaryKey"`
	UserID    int64           `gorm:"column:user_id;not null;uniqueIndex:idx_monthly_budgets_user_month,priority:1"`
	Month     string          `gorm:"column:month;size:7;not null;uniqueIndex:idx_monthly_budgets_user_month,priority:2"`
	Budget    decimal.Decimal `gorm:"column:budget;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (MonthlyBudget) TableName() string {
	return "monthly_budgets"
}

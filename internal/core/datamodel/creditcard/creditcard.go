package creditcard

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditCard struct {
	ID                  int64           `gorm:"primaryKey"`
	UserID              int64           `gorm:"column:user_id;not null;index"`
	Name                string          `gorm:"column:name;not null"`
	LastFourDigits      string          `gorm:"column:last_four_digits;size:4;not null"`
	Issuer              string          `gorm:"column:issuer;not null"`
	BillingCycle        int             `gorm:"column:billing_cycle;not null"`
	DueDate             int             `gorm:"column:due_date;not null"`
	CreditLimit         decimal.Decimal `gorm:"column:credit_limit;type:numeric(14,2);not null"`
	CurrentBalance      decimal.Decimal `gorm:"column:current_balance;type:numeric(14,2);not null"`
	BalanceAdjustment   decimal.Decimal `gorm:"column:balance_adjustment;type:numeric(14,2);not null"`
	PreviousOutstanding decimal.Decimal `gorm:"column:previous_outstanding;type:numeric(14,2);not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CreditCard) TableName() string {
	return "credit_cards"
}

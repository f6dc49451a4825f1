package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID            int64           `gorm:"primaryKey"`
	UserID        int64           `gorm:"column:user_id;not null;index:idx_loans_user_day,priority:1"`
	Name          string          `gorm:"column:name;not null"`
	Lender        string          `gorm:"column:lender"`
	Status        string          `gorm:"column:status;not null"`
	EMIAmount     decimal.Decimal `gorm:"column:emi_amount;type:numeric(14,2);not null"`
	EMIDate       int             `gorm:"column:emi_date;not null;index:idx_loans_user_day,priority:2"`
	StartDate     time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate       time.Time       `gorm:"column:end_date;type:date;not null"`
	PaymentMethod string          `gorm:"column:payment_method;not null"`
	CreditCardID  *int64          `gorm:"column:credit_card_id"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Loan) TableName() string {
	return "loans"
}

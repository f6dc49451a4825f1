package sip

import (
	"time"

	"github.com/shopspring/decimal"
)

// SIP mirrors loans; a nil EndDate keeps the plan open ended.
type SIP struct {
	ID            int64           `gorm:"primaryKey"`
	UserID        int64           `gorm:"column:user_id;not null;index:idx_sips_user_day,priority:1"`
	Name          string          `gorm:"column:name;not null"`
	FundName      string          `gorm:"column:fund_name;not null"`
	Status        string          `gorm:"column:status;not null"`
	SIPAmount     decimal.Decimal `gorm:"column:sip_amount;type:numeric(14,2);not null"`
	SIPDate       int             `gorm:"column:sip_date;not null;index:idx_sips_user_day,priority:2"`
	StartDate     time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate       *time.Time      `gorm:"column:end_date;type:date"`
	PaymentMethod string          `gorm:"column:payment_method;not null"`
	CreditCardID  *int64          `gorm:"column:credit_card_id"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (SIP) TableName() string {
	return "sips"
}

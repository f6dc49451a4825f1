package user

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                 int64           `gorm:"primaryKey"`
	Email              string          `gorm:"column:email;uniqueIndex;not null"`
	Name               string          `gorm:"column:name;not null"`
	PasswordHash       string          `gorm:"column:password_hash;not null"`
	Role               string          `gorm:"column:role;not null;default:user"`
	Currency           string          `gorm:"column:currency;not null;default:USD"`
	MonthlyBudget      decimal.Decimal `gorm:"column:monthly_budget;type:numeric(14,2);not null"`
	Theme              string          `gorm:"column:theme;not null;default:dark"`
	EmailNotifications bool            `gorm:"column:email_notifications;not null"`
	BudgetAlerts       bool            `gorm:"column:budget_alerts;not null"`
	BillReminders      bool            `gorm:"column:bill_reminders;not null"`
	WeeklyReport       bool            `gorm:"column:weekly_report;not null"`
	MonthlyReport      bool            `gorm:"column:monthly_report;not null"`
	TwoFactorEnabled   bool            `gorm:"column:two_factor_enabled;not null"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	LastLogin          *time.Time      `gorm:"column:last_login"`
	LastPasswordChange *time.Time      `gorm:"column:last_password_change"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

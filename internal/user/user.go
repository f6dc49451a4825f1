package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "USD"
	DefaultTheme    = "dark"
	AccentColor     = "#6366F1"
)

var (
	themes     = []string{"dark", "light", "system"}
	currencies = []string{"USD", "EUR", "GBP", "INR", "IDR", "JPY", "SGD", "AUD", "CAD"}
)

type Notifications struct {
	EmailNotifications bool `json:"emailNotifications"`
	BudgetAlerts       bool `json:"budgetAlerts"`
	BillReminders      bool `json:"billReminders"`
	WeeklyReport       bool `json:"weeklyReport"`
	MonthlyReport      bool `json:"monthlyReport"`
}

// User is the profile view of an account. The password hash never leaves the repository.
type User struct {
	ID                 int64           `json:"id"`
	Email              string          `json:"email"`
	Name               string          `json:"name"`
	Role               string          `json:"role"`
	Currency           string          `json:"currency"`
	MonthlyBudget      decimal.Decimal `json:"monthlyBudget"`
	Theme              string          `json:"theme"`
	Notifications      Notifications   `json:"notifications"`
	TwoFactorEnabled   bool            `json:"twoFactorEnabled"`
	IsActive           bool            `json:"isActive"`
	LastLogin          *time.Time      `json:"lastLogin"`
	LastPasswordChange *time.Time      `json:"lastPasswordChange"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Currency:      u.Currency,
		MonthlyBudget: u.MonthlyBudget,
		Theme:         u.Theme,
		Notifications: Notifications{
			EmailNotifications: u.EmailNotifications,
			BudgetAlerts:       u.BudgetAlerts,
			BillReminders:      u.BillReminders,
			WeeklyReport:       u.WeeklyReport,
			MonthlyReport:      u.MonthlyReport,
		},
		TwoFactorEnabled:   u.TwoFactorEnabled,
		IsActive:           u.IsActive,
		LastLogin:          u.LastLogin,
		LastPasswordChange: u.LastPasswordChange,
		CreatedAt:          u.CreatedAt,
	}
}

package user

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const minPasswordLength = 8

type UpdateProfileDTO struct {
	Name          *string          `json:"name,omitempty"`
	Currency      *string          `json:"currency,omitempty"`
	MonthlyBudget *decimal.Decimal `json:"monthlyBudget,omitempty"`
	Theme         *string          `json:"theme,omitempty"`
}

func (dto *UpdateProfileDTO) Normalize() {
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		dto.Name = &name
	}
	if dto.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*dto.Currency))
		dto.Currency = &c
	}
}

func (dto UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(100)
	}
	if dto.Currency != nil {
		v.Field("currency", *dto.Currency).OneOf(currencies...)
	}
	if dto.Theme != nil {
		v.Field("theme", *dto.Theme).OneOf(themes...)
	}
	v.Field("monthlyBudget", dto.MonthlyBudget).NonNegative(errors.ErrCodeInvalidAmount)
	return v.Err()
}

type UpdatePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (dto UpdatePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("currentPassword", dto.CurrentPassword).Required()
	v.Field("newPassword", dto.NewPassword).Required().MinLength(minPasswordLength)
	if err := v.Err(); err != nil {
		return err
	}
	if dto.NewPassword != dto.ConfirmPassword {
		return errors.NewValidationFieldError("confirmPassword", "passwords do not match", errors.ErrCodeInvalidPassword)
	}
	return nil
}

// UpdateNotificationsDTO leaves absent flags untouched.
type UpdateNotificationsDTO struct {
	EmailNotifications *bool `json:"emailNotifications,omitempty"`
	BudgetAlerts       *bool `json:"budgetAlerts,omitempty"`
	BillReminders      *bool `json:"billReminders,omitempty"`
	WeeklyReport       *bool `json:"weeklyReport,omitempty"`
	MonthlyReport      *bool `json:"monthlyReport,omitempty"`
}

func (dto UpdateNotificationsDTO) Apply(n Notifications) Notifications {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&n.EmailNotifications, dto.EmailNotifications)
	set(&n.BudgetAlerts, dto.BudgetAlerts)
	set(&n.BillReminders, dto.BillReminders)
	set(&n.WeeklyReport, dto.WeeklyReport)
	set(&n.MonthlyReport, dto.MonthlyReport)
	return n
}

type ProfileSettings struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

type SecuritySettings struct {
	TwoFactorEnabled   bool       `json:"twoFactorEnabled"`
	LastPasswordChange *time.Time `json:"lastPasswordChange"`
}

type AppearanceSettings struct {
	Theme       string `json:"theme"`
	AccentColor string `json:"accentColor"`
}

type Settings struct {
	Profile       ProfileSettings    `json:"profile"`
	Notifications Notifications      `json:"notifications"`
	Security      SecuritySettings   `json:"security"`
	Appearance    AppearanceSettings `json:"appearance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

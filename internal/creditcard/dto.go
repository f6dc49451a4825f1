package creditcard

import (
	"regexp"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

var lastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)

type CreateCardDTO struct {
	Name                string           `json:"name"`
	LastFourDigits      string           `json:"lastFourDigits"`
	Issuer              string           `json:"issuer"`
	BillingCycle        int              `json:"billingCycle"`
	DueDate             int              `json:"dueDate"`
	CreditLimit         decimal.Decimal  `json:"creditLimit"`
	CurrentBalance      *decimal.Decimal `json:"currentBalance,omitempty"`
	PreviousOutstanding *decimal.Decimal `json:"previousOutstanding,omitempty"`
}

func (dto CreateCardDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("lastFourDigits", dto.LastFourDigits).Required().Custom(lastFour)
	v.Field("issuer", dto.Issuer).Required().MaxLength(100)
	v.Field("billingCycle", dto.BillingCycle).DayOfMonth()
	v.Field("dueDate", dto.DueDate).MinInt(1, errors.ErrCodeInvalidDayOfMonth).MaxInt(60, errors.ErrCodeInvalidDayOfMonth)
	v.Field("creditLimit", dto.CreditLimit).NonNegative(errors.ErrCodeInvalidAmount)
	v.Field("currentBalance", dto.CurrentBalance).NonNegative(errors.ErrCodeInvalidAmount)
	v.Field("previousOutstanding", dto.PreviousOutstanding).NonNegative(errors.ErrCodeInvalidAmount)
	return v.Err()
}

// UpdateCardDTO is a partial patch. Setting CurrentBalance rewrites the manual
// adjustment so the balance still equals adjustment plus linked expenses.
type UpdateCardDTO struct {
	Name                *string          `json:"name,omitempty"`
	LastFourDigits      *string          `json:"lastFourDigits,omitempty"`
	Issuer              *string          `json:"issuer,omitempty"`
	BillingCycle        *int             `json:"billingCycle,omitempty"`
	DueDate             *int             `json:"dueDate,omitempty"`
	CreditLimit         *decimal.Decimal `json:"creditLimit,omitempty"`
	CurrentBalance      *decimal.Decimal `json:"currentBalance,omitempty"`
	PreviousOutstanding *decimal.Decimal `json:"previousOutstanding,omitempty"`
}

func (dto UpdateCardDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(100)
	}
	if dto.LastFourDigits != nil {
		v.Field("lastFourDigits", *dto.LastFourDigits).Custom(lastFour)
	}
	if dto.Issuer != nil {
		v.Field("issuer", *dto.Issuer).Required()
	}
	if dto.BillingCycle != nil {
		v.Field("billingCycle", *dto.BillingCycle).DayOfMonth()
	}
	if dto.DueDate != nil {
		v.Field("dueDate", *dto.DueDate).MinInt(1, errors.ErrCodeInvalidDayOfMonth).MaxInt(60, errors.ErrCodeInvalidDayOfMonth)
	}
	v.Field("creditLimit", dto.CreditLimit).NonNegative(errors.ErrCodeInvalidAmount)
	v.Field("currentBalance", dto.CurrentBalance).NonNegative(errors.ErrCodeInvalidAmount)
	v.Field("previousOutstanding", dto.PreviousOutstanding).NonNegative(errors.ErrCodeInvalidAmount)
	return v.Err()
}

type LinkExpenseDTO struct {
	ExpenseID int64 `json:"expenseId"`
}

type CardView struct {
	*CreditCard
	Utilization     float64         `json:"utilization"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	Schedule
}

type UpcomingPayment struct {
	CardID       int64           `json:"cardId"`
	CardName     string          `json:"cardName"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      string          `json:"dueDate"`
	DaysUntilDue int             `json:"daysUntilDue"`
}

type Summary struct {
	TotalCards         int               `json:"totalCards"`
	TotalCreditLimit   decimal.Decimal   `json:"totalCreditLimit"`
	TotalBalance       decimal.Decimal   `json:"totalBalance"`
	AverageUtilization float64           `json:"averageUtilization"`
	UpcomingPayments   []UpcomingPayment `json:"upcomingPayments"`
}

type ListResponse struct {
	Cards   []CardView `json:"cards"`
	Summary Summary    `json:"summary"`
}

func lastFour(value interface{}) *errors.AppError {
	s, _ := value.(string)
	if !lastFourPattern.MatchString(s) {
		return errors.NewValidationFieldError("lastFourDigits", "lastFourDigits must be exactly 4 digits", errors.ErrCodeValidationFailed)
	}
	return nil
}

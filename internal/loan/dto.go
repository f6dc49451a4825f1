package loan

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

var statuses = []string{StatusActive, StatusPaused, StatusCompleted}

type CreateLoanDTO struct {
	Name          string          `json:"name"`
	Lender        string          `json:"lender"`
	Status        string          `json:"status"`
	EMIAmount     decimal.Decimal `json:"emiAmount"`
	EMIDate       int             `json:"emiDate"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	PaymentMethod string          `json:"paymentMethod"`
	CreditCardID  *int64          `json:"creditCardId,omitempty"`
}

func (dto *CreateLoanDTO) Validate(loc *time.Location) (start, end time.Time, err error) {
	if dto.Status == "" {
		dto.Status = StatusActive
	}
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("status", dto.Status).OneOf(statuses...)
	v.Field("emiAmount", dto.EMIAmount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("emiDate", dto.EMIDate).DayOfMonth()
	v.Field("paymentMethod", dto.PaymentMethod).Required()
	if err := v.Err(); err != nil {
		return start, end, err
	}

	if start, err = parseDate("startDate", dto.StartDate, loc); err != nil {
		return start, end, err
	}
	if end, err = parseDate("endDate", dto.EndDate, loc); err != nil {
		return start, end, err
	}
	return start, end, checkRange(start, end)
}

type UpdateLoanDTO struct {
	Name          *string          `json:"name,omitempty"`
	Lender        *string          `json:"lender,omitempty"`
	Status        *string          `json:"status,omitempty"`
	EMIAmount     *decimal.Decimal `json:"emiAmount,omitempty"`
	EMIDate       *int             `json:"emiDate,omitempty"`
	StartDate     *string          `json:"startDate,omitempty"`
	EndDate       *string          `json:"endDate,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	CreditCardID  *int64           `json:"creditCardId,omitempty"`
}

func (dto UpdateLoanDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(100)
	}
	if dto.Status != nil {
		v.Field("status", *dto.Status).OneOf(statuses...)
	}
	v.Field("emiAmount", dto.EMIAmount).Positive(errors.ErrCodeInvalidAmount)
	if dto.EMIDate != nil {
		v.Field("emiDate", *dto.EMIDate).DayOfMonth()
	}
	if dto.PaymentMethod != nil {
		v.Field("paymentMethod", *dto.PaymentMethod).Required()
	}
	return v.Err()
}

type Summary struct {
	TotalLoans       int             `json:"totalLoans"`
	ActiveLoans      int             `json:"activeLoans"`
	TotalEMI         decimal.Decimal `json:"totalEMI"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

type ListResponse struct {
	Loans   []*Loan `json:"loans"`
	Summary Summary `json:"summary"`
}

func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(period.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError(field, field+" must use YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func checkRange(start, end time.Time) error {
	v := validation.NewValidator()
	v.Field("endDate", end).NotBefore(start, "startDate")
	return v.Err()
}

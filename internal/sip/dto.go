package sip

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

var statuses = []string{StatusActive, StatusPaused, StatusCompleted}

type CreateSIPDTO struct {
	Name          string          `json:"name"`
	FundName      string          `json:"fundName"`
	Status        string          `json:"status"`
	SIPAmount     decimal.Decimal `json:"sipAmount"`
	SIPDate       int             `json:"sipDate"`
	StartDate     string          `json:"startDate"`
	EndDate       *string         `json:"endDate,omitempty"`
	PaymentMethod string          `json:"paymentMethod"`
	CreditCardID  *int64          `json:"creditCardId,omitempty"`
}

// Validate checks the payload and returns the parsed dates. An empty endDate
// is treated the same as an absent one.
func (dto *CreateSIPDTO) Validate(loc *time.Location) (start time.Time, end *time.Time, err error) {
	if dto.Status == "" {
		dto.Status = StatusActive
	}
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("fundName", dto.FundName).Required().MaxLength(150)
	v.Field("status", dto.Status).OneOf(statuses...)
	v.Field("sipAmount", dto.SIPAmount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("sipDate", dto.SIPDate).DayOfMonth()
	v.Field("paymentMethod", dto.PaymentMethod).Required()
	if err := v.Err(); err != nil {
		return start, nil, err
	}

	if start, err = parseDate("startDate", dto.StartDate, loc); err != nil {
		return start, nil, err
	}
	if end, err = parseOptionalDate(dto.EndDate, loc); err != nil {
		return start, nil, err
	}
	return start, end, checkRange(start, end)
}

type UpdateSIPDTO struct {
	Name          *string          `json:"name,omitempty"`
	FundName      *string          `json:"fundName,omitempty"`
	Status        *string          `json:"status,omitempty"`
	SIPAmount     *decimal.Decimal `json:"sipAmount,omitempty"`
	SIPDate       *int             `json:"sipDate,omitempty"`
	StartDate     *string          `json:"startDate,omitempty"`
	EndDate       *string          `json:"endDate,omitempty"`
	ClearEndDate  bool             `json:"clearEndDate,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	CreditCardID  *int64           `json:"creditCardId,omitempty"`
}

func (dto UpdateSIPDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(100)
	}
	if dto.FundName != nil {
		v.Field("fundName", *dto.FundName).Required().MaxLength(150)
	}
	if dto.Status != nil {
		v.Field("status", *dto.Status).OneOf(statuses...)
	}
	v.Field("sipAmount", dto.SIPAmount).Positive(errors.ErrCodeInvalidAmount)
	if dto.SIPDate != nil {
		v.Field("sipDate", *dto.SIPDate).DayOfMonth()
	}
	if dto.PaymentMethod != nil {
		v.Field("paymentMethod", *dto.PaymentMethod).Required()
	}
	return v.Err()
}

type Summary struct {
	TotalSIPs         int             `json:"totalSIPs"`
	ActiveSIPs        int             `json:"activeSIPs"`
	MonthlyInvestment decimal.Decimal `json:"monthlyInvestment"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
}

type ListResponse struct {
	SIPs    []*SIP  `json:"sips"`
	Summary Summary `json:"summary"`
}

func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(period.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError(field, field+" must use YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func parseOptionalDate(raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate("endDate", *raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func checkRange(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	v := validation.NewValidator()
	v.Field("endDate", *end).NotBefore(start, "startDate")
	return v.Err()
}

package sip

import (
	"time"

	sipDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/sip"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// SIP is a systematic investment plan. A nil EndDate means it never expires.
type SIP struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	FundName      string          `json:"fundName"`
	Status        string          `json:"status"`
	SIPAmount     decimal.Decimal `json:"sipAmount"`
	SIPDate       int             `json:"sipDate"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       *time.Time      `json:"endDate"`
	PaymentMethod string          `json:"paymentMethod"`
	CreditCardID  *int64          `json:"creditCardId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (s *SIP) IsActive() bool {
	return s.Status == StatusActive
}

// MonthsInvested counts installments from the start month through the end
// month, or through now when the plan is still running. Plans that have not
// started yet count zero.
func (s *SIP) MonthsInvested(now time.Time) int {
	last := now
	if s.EndDate != nil && s.EndDate.Before(now) {
		last = *s.EndDate
	}
	if last.Before(s.StartDate) {
		return 0
	}
	return period.MonthsBetween(s.StartDate, last) + 1
}

func (s *SIP) Invested(now time.Time) decimal.Decimal {
	return s.SIPAmount.Mul(decimal.NewFromInt(int64(s.MonthsInvested(now))))
}

func ToDataModel(s *SIP) *sipDatamodel.SIP {
	return &sipDatamodel.SIP{
		ID:            s.ID,
		UserID:        s.UserID,
		Name:          s.Name,
		FundName:      s.FundName,
		Status:        s.Status,
		SIPAmount:     s.SIPAmount,
		SIPDate:       s.SIPDate,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		PaymentMethod: s.PaymentMethod,
		CreditCardID:  s.CreditCardID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModel(s *sipDatamodel.SIP) *SIP {
	return &SIP{
		ID:            s.ID,
		UserID:        s.UserID,
		Name:          s.Name,
		FundName:      s.FundName,
		Status:        s.Status,
		SIPAmount:     s.SIPAmount,
		SIPDate:       s.SIPDate,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		PaymentMethod: s.PaymentMethod,
		CreditCardID:  s.CreditCardID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModelSlice(sips []*sipDatamodel.SIP) []*SIP {
	result := make([]*SIP, len(sips))
	for i, s := range sips {
		result[i] = FromDataModel(s)
	}
	return result
}

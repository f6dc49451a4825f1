package loan

import (
	"time"

	loanDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/loan"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

type Loan struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	Lender        string          `json:"lender,omitempty"`
	Status        string          `json:"status"`
	EMIAmount     decimal.Decimal `json:"emiAmount"`
	EMIDate       int             `json:"emiDate"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	PaymentMethod string          `json:"paymentMethod"`
	CreditCardID  *int64          `json:"creditCardId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (l *Loan) IsActive() bool {
	return l.Status == StatusActive
}

// MonthsRemaining counts calendar months from now until the end date, never negative.
func (l *Loan) MonthsRemaining(now time.Time) int {
	if m := period.MonthsBetween(now, l.EndDate); m > 0 {
		return m
	}
	return 0
}

func (l *Loan) Outstanding(now time.Time) decimal.Decimal {
	return l.EMIAmount.Mul(decimal.NewFromInt(int64(l.MonthsRemaining(now))))
}

func ToDataModel(l *Loan) *loanDatamodel.Loan {
	return &loanDatamodel.Loan{
		ID:            l.ID,
		UserID:        l.UserID,
		Name:          l.Name,
		Lender:        l.Lender,
		Status:        l.Status,
		EMIAmount:     l.EMIAmount,
		EMIDate:       l.EMIDate,
		StartDate:     l.StartDate,
		EndDate:       l.EndDate,
		PaymentMethod: l.PaymentMethod,
		CreditCardID:  l.CreditCardID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func FromDataModel(l *loanDatamodel.Loan) *Loan {
	return &Loan{
		ID:            l.ID,
		UserID:        l.UserID,
		Name:          l.Name,
		Lender:        l.Lender,
		Status:        l.Status,
		EMIAmount:     l.EMIAmount,
		EMIDate:       l.EMIDate,
		StartDate:     l.StartDate,
		EndDate:       l.EndDate,
		PaymentMethod: l.PaymentMethod,
		CreditCardID:  l.CreditCardID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func FromDataModelSlice(loans []*loanDatamodel.Loan) []*Loan {
	result := make([]*Loan, len(loans))
	for i, l := range loans {
		result[i] = FromDataModel(l)
	}
	return result
}

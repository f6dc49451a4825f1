package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/expense"
	"github.com/shopspring/decimal"
)

// Expense is a single ledger entry. SourceRuleType, SourceRuleID and
// SourcePeriod are only set on rows written by the recurring materializer.
type Expense struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	Notes          *string         `json:"notes,omitempty"`
	CreditCardID   *int64          `json:"creditCardId,omitempty"`
	CreditCard     *CardRef        `json:"creditCard,omitempty"`
	SourceRuleType *string         `json:"sourceRuleType,omitempty"`
	SourceRuleID   *int64          `json:"sourceRuleId,omitempty"`
	SourcePeriod   *string         `json:"sourcePeriod,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CardRef is the card summary embedded in expense listings.
type CardRef struct {
	Name           string `json:"name"`
	LastFourDigits string `json:"lastFourDigits"`
}

func (e *Expense) IsMaterialized() bool {
	return e.SourceRuleType != nil && e.SourceRuleID != nil
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:             e.ID,
		UserID:         e.UserID,
		ExpenseDate:    e.Date,
		Description:    e.Description,
		Category:       e.Category,
		Amount:         e.Amount,
		PaymentMethod:  e.PaymentMethod,
		Notes:          e.Notes,
		CreditCardID:   e.CreditCardID,
		SourceRuleType: e.SourceRuleType,
		SourceRuleID:   e.SourceRuleID,
		SourcePeriod:   e.SourcePeriod,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:             e.ID,
		UserID:         e.UserID,
		Date:           e.ExpenseDate,
		Description:    e.Description,
		Category:       e.Category,
		Amount:         e.Amount,
		PaymentMethod:  e.PaymentMethod,
		Notes:          e.Notes,
		CreditCardID:   e.CreditCardID,
		SourceRuleType: e.SourceRuleType,
		SourceRuleID:   e.SourceRuleID,
		SourcePeriod:   e.SourcePeriod,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}

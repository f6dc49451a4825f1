package expense

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
	maxDescription   = 500
	maxBulkDelete    = 500
)

var sortColumns = map[string]string{
	"date":        "expense_date",
	"amount":      "amount",
	"description": "description",
	"category":    "category",
	"createdAt":   "created_at",
}

// CreateExpenseDTO represents the request payload for creating an expense
type CreateExpenseDTO struct {
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         *string         `json:"notes,omitempty"`
	CreditCardID  *int64          `json:"creditCardId,omitempty"`
}

func (dto CreateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("date", dto.Date).Required().Custom(dateField)
	v.Field("description", dto.Description).Required().MaxLength(maxDescription)
	v.Field("category", dto.Category).Required()
	v.Field("amount", dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("paymentMethod", dto.PaymentMethod).Required()
	return v.Err()
}

// UpdateExpenseDTO is a partial patch; nil fields are left untouched.
// ClearCreditCard unlinks the card since a nil CreditCardID means "keep".
type UpdateExpenseDTO struct {
	Date            *string          `json:"date,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	PaymentMethod   *string          `json:"paymentMethod,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	CreditCardID    *int64           `json:"creditCardId,omitempty"`
	ClearCreditCard bool             `json:"clearCreditCard,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Date != nil {
		v.Field("date", *dto.Date).Required().Custom(dateField)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).Required().MaxLength(maxDescription)
	}
	if dto.Category != nil {
		v.Field("category", *dto.Category).Required()
	}
	v.Field("amount", dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	if dto.PaymentMethod != nil {
		v.Field("paymentMethod", *dto.PaymentMethod).Required()
	}
	return v.Err()
}

type BulkDeleteDTO struct {
	ExpenseIDs []int64 `json:"expenseIds"`
}

func (dto BulkDeleteDTO) Validate() error {
	if len(dto.ExpenseIDs) == 0 {
		return errors.NewValidationFieldError("expenseIds", "expenseIds must not be empty", errors.ErrCodeValidationFailed)
	}
	if len(dto.ExpenseIDs) > maxBulkDelete {
		return errors.NewValidationFieldError("expenseIds", "too many expenseIds", errors.ErrCodeValidationFailed)
	}
	return nil
}

type BulkDeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ListQuery carries the list filters after normalization.
type ListQuery struct {
	Page      int
	Limit     int
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// Normalize clamps paging and maps the sort key to its column.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if strings.EqualFold(q.Category, "all") {
		q.Category = ""
	}
	q.Search = strings.TrimSpace(q.Search)
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "date"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// OrderClause is safe to interpolate: both parts come from fixed sets.
func (q ListQuery) OrderClause() string {
	return sortColumns[q.SortBy] + " " + strings.ToUpper(q.SortOrder) + ", id " + strings.ToUpper(q.SortOrder)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type Summary struct {
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Count         int64           `json:"count"`
	ThisMonth     decimal.Decimal `json:"thisMonth"`
	AverageDaily  decimal.Decimal `json:"averageDaily"`
}

type ListResponse struct {
	Expenses   []*Expense `json:"expenses"`
	Pagination Pagination `json:"pagination"`
	Summary    Summary    `json:"summary"`
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(period.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError("date", "date must use YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func dateField(value interface{}) *errors.AppError {
	s, _ := value.(string)
	if _, err := time.Parse(period.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.NewValidationFieldError("date", "date must use YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	return nil
}

package budget

import (
	"strings"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/validation"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

type UpsertBudgetDTO struct {
	Month  string          `json:"month"`
	Budget decimal.Decimal `json:"budget"`
}

func (dto *UpsertBudgetDTO) Validate() error {
	dto.Month = strings.TrimSpace(dto.Month)

	v := validation.NewValidator()
	v.Field("month", dto.Month).Required()
	v.Field("budget", dto.Budget).NonNegative(errors.ErrCodeInvalidAmount)
	if err := v.Err(); err != nil {
		return err
	}
	return validateMonth(dto.Month)
}

// MonthBudget is the budget that applies to a month. IsCustom is false when
// the value comes from the user's default.
type MonthBudget struct {
	Month    string          `json:"month"`
	Budget   decimal.Decimal `json:"budget"`
	IsCustom bool            `json:"isCustom"`
}

type Summary struct {
	TotalMonths   int             `json:"totalMonths"`
	TotalBudget   decimal.Decimal `json:"totalBudget"`
	AverageBudget decimal.Decimal `json:"averageBudget"`
}

type ListResponse struct {
	Budgets []*MonthlyBudget `json:"budgets"`
	Summary Summary          `json:"summary"`
}

func validateMonth(month string) error {
	_, err := period.ParseMonthKey(month, nil)
	return err
}

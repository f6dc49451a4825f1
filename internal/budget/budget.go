package budget

import (
	"time"

	budgetDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/budget"
	"github.com/shopspring/decimal"
)

// MonthlyBudget overrides the user's default budget for one "YYYY-MM" month.
type MonthlyBudget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Month     string          `json:"month"`
	Budget    decimal.Decimal `json:"budget"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func ToDataModel(b *MonthlyBudget) *budgetDatamodel.MonthlyBudget {
	return &budgetDatamodel.MonthlyBudget{
		ID:        b.ID,
		UserID:    b.UserID,
		Month:     b.Month,
		Budget:    b.Budget,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromDataModel(b *budgetDatamodel.MonthlyBudget) *MonthlyBudget {
	return &MonthlyBudget{
		ID:        b.ID,
		UserID:    b.UserID,
		Month:     b.Month,
		Budget:    b.Budget,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromDataModelSlice(budgets []*budgetDatamodel.MonthlyBudget) []*MonthlyBudget {
	result := make([]*MonthlyBudget, len(budgets))
	for i, b := range budgets {
		result[i] = FromDataModel(b)
	}
	return result
}

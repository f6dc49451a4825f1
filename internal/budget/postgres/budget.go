package postgres

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/budget"
	budgetDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/budget"
	userDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.RepositoryAPI {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID int64) ([]*budget.MonthlyBudget, error) {
	var rows []*budgetDatamodel.MonthlyBudget
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("month DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return budget.FromDataModelSlice(rows), nil
}

func (r *BudgetRepository) GetByMonth(ctx context.Context, userID int64, month string) (*budget.MonthlyBudget, error) {
	var row budgetDatamodel.MonthlyBudget
	if err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget.FromDataModel(&row), nil
}

// Upsert relies on the (user_id, month) unique index.
func (r *BudgetRepository) Upsert(ctx context.Context, b *budget.MonthlyBudget) error {
	row := budget.ToDataModel(b)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"budget", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return err
	}

	stored, err := r.GetByMonth(ctx, b.UserID, b.Month)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID int64, month string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).Delete(&budgetDatamodel.MonthlyBudget{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) DefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Select("id", "monthly_budget").Where("id = ?", userID).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, errors.ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return row.MonthlyBudget, nil
}

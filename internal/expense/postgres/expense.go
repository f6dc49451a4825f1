package postgres

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	creditcardDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	expenseDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/expense"
	"github.com/frahmantamala/fintrack/internal/expense"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseRepository implements the expense.RepositoryAPI interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) filtered(ctx context.Context, userID int64, q expense.ListQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("user_id = ?", userID)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		tx = tx.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}
	return tx
}

func (r *ExpenseRepository) List(ctx context.Context, userID int64, q expense.ListQuery) ([]*expense.Expense, int64, error) {
	var total int64
	if err := r.filtered(ctx, userID, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*expenseDatamodel.Expense
	err := r.filtered(ctx, userID, q).
		Order(q.OrderClause()).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	expenses := expense.FromDataModelSlice(rows)
	if err := r.attachCards(ctx, expenses); err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// attachCards loads the card name and last four digits for linked expenses.
func (r *ExpenseRepository) attachCards(ctx context.Context, expenses []*expense.Expense) error {
	ids := make([]int64, 0)
	seen := map[int64]bool{}
	for _, e := range expenses {
		if e.CreditCardID != nil && !seen[*e.CreditCardID] {
			seen[*e.CreditCardID] = true
			ids = append(ids, *e.CreditCardID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var cards []creditcardDatamodel.CreditCard
	if err := r.db.WithContext(ctx).Select("id", "name", "last_four_digits").Where("id IN ?", ids).Find(&cards).Error; err != nil {
		return err
	}
	refs := make(map[int64]*expense.CardRef, len(cards))
	for _, c := range cards {
		refs[c.ID] = &expense.CardRef{Name: c.Name, LastFourDigits: c.LastFourDigits}
	}
	for _, e := range expenses {
		if e.CreditCardID != nil {
			e.CreditCard = refs[*e.CreditCardID]
		}
	}
	return nil
}

func (r *ExpenseRepository) Totals(ctx context.Context, userID int64, month period.Window) (decimal.Decimal, decimal.Decimal, error) {
	total, err := r.sum(r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("user_id = ?", userID))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	inMonth, err := r.sum(r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Where("user_id = ? AND expense_date >= ? AND expense_date <= ?", userID, month.Start, month.End))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return total, inMonth, nil
}

func (r *ExpenseRepository) sum(tx *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := tx.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *ExpenseRepository) FindInWindow(ctx context.Context, userID int64, w period.Window) ([]*expense.Expense, error) {
	var rows []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expense_date >= ? AND expense_date <= ?", userID, w.Start, w.End).
		Order("expense_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

// GetByID retrieves one of the user's expenses by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id int64) (*expense.Expense, error) {
	var row expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&row), nil
}

// Create saves a new expense to the database
func (r *ExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	row := expense.ToDataModel(exp)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	exp.ID = row.ID
	exp.CreatedAt = row.CreatedAt
	exp.UpdatedAt = row.UpdatedAt
	return nil
}

// Update rewrites the editable columns; the source marker is immutable.
func (r *ExpenseRepository) Update(ctx context.Context, exp *expense.Expense) error {
	exp.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND user_id = ?", exp.ID, exp.UserID).
		Updates(map[string]interface{}{
			"expense_date":   exp.Date,
			"description":    exp.Description,
			"category":       exp.Category,
			"amount":         exp.Amount,
			"payment_method": exp.PaymentMethod,
			"notes":          exp.Notes,
			"credit_card_id": exp.CreditCardID,
			"updated_at":     exp.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&expenseDatamodel.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) BulkDelete(ctx context.Context, userID int64, ids []int64) (int64, []int64, error) {
	var deleted int64
	var cardIDs []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&expenseDatamodel.Expense{}).
			Distinct("credit_card_id").
			Where("user_id = ? AND id IN ? AND credit_card_id IS NOT NULL", userID, ids).
			Pluck("credit_card_id", &cardIDs).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&expenseDatamodel.Expense{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return deleted, cardIDs, nil
}

func (r *ExpenseRepository) CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&creditcardDatamodel.CreditCard{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Count(&count).Error
	return count > 0, err
}

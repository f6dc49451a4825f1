package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	creditcardDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	expenseDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/expense"
	loanDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/loan"
	sipDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/sip"
	"github.com/frahmantamala/fintrack/internal/creditcard"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recomputeBalanceSQL = `UPDATE credit_cards
SET current_balance = balance_adjustment + COALESCE((SELECT SUM(e.amount) FROM expenses e WHERE e.credit_card_id = credit_cards.id), 0),
    updated_at = ?
WHERE id = ?`

type CreditCardRepository struct {
	db *gorm.DB
}

func NewCreditCardRepository(db *gorm.DB) creditcard.RepositoryAPI {
	return &CreditCardRepository{db: db}
}

func (r *CreditCardRepository) ListByUser(ctx context.Context, userID int64) ([]*creditcard.CreditCard, error) {
	var rows []*creditcardDatamodel.CreditCard
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return creditcard.FromDataModelSlice(rows), nil
}

func (r *CreditCardRepository) GetByID(ctx context.Context, userID, id int64) (*creditcard.CreditCard, error) {
	var row creditcardDatamodel.CreditCard
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCreditCardNotFound
		}
		return nil, err
	}
	return creditcard.FromDataModel(&row), nil
}

func (r *CreditCardRepository) Create(ctx context.Context, card *creditcard.CreditCard) error {
	row := creditcard.ToDataModel(card)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	card.ID = row.ID
	card.CreatedAt = row.CreatedAt
	card.UpdatedAt = row.UpdatedAt
	return nil
}

// Update writes every column except current_balance, which only the recompute touches.
func (r *CreditCardRepository) Update(ctx context.Context, card *creditcard.CreditCard) error {
	res := r.db.WithContext(ctx).
		Model(&creditcardDatamodel.CreditCard{}).
		Where("id = ? AND user_id = ?", card.ID, card.UserID).
		Updates(map[string]interface{}{
			"name":                 card.Name,
			"last_four_digits":     card.LastFourDigits,
			"issuer":               card.Issuer,
			"billing_cycle":        card.BillingCycle,
			"due_date":             card.DueDate,
			"credit_limit":         card.CreditLimit,
			"balance_adjustment":   card.BalanceAdjustment,
			"previous_outstanding": card.PreviousOutstanding,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrCreditCardNotFound
	}
	return nil
}

func (r *CreditCardRepository) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&expenseDatamodel.Expense{}, &loanDatamodel.Loan{}, &sipDatamodel.SIP{}} {
			if err := tx.Model(model).
				Where("credit_card_id = ? AND user_id = ?", id, userID).
				Update("credit_card_id", nil).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&creditcardDatamodel.CreditCard{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrCreditCardNotFound
		}
		return nil
	})
}

func (r *CreditCardRepository) LinkExpense(ctx context.Context, userID, cardID, expenseID int64) (*int64, error) {
	var previous *int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exp expenseDatamodel.Expense
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&exp).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrExpenseNotFound
			}
			return err
		}
		previous = exp.CreditCardID

		return tx.Model(&expenseDatamodel.Expense{}).
			Where("id = ?", expenseID).
			Updates(map[string]interface{}{"credit_card_id": cardID, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (r *CreditCardRepository) RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error) {
	db := r.db.WithContext(ctx)

	res := db.Exec(recomputeBalanceSQL, time.Now(), cardID)
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, errors.ErrCreditCardNotFound
	}

	var row creditcardDatamodel.CreditCard
	if err := db.Select("current_balance").Where("id = ?", cardID).First(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.CurrentBalance, nil
}

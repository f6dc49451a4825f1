package postgres

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/fintrack/internal"
	creditcardDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	loanDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/loan"
	"github.com/frahmantamala/fintrack/internal/loan"
	"gorm.io/gorm"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) loan.RepositoryAPI {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) ListByUser(ctx context.Context, userID int64) ([]*loan.Loan, error) {
	var rows []*loanDatamodel.Loan
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return loan.FromDataModelSlice(rows), nil
}

func (r *LoanRepository) GetByID(ctx context.Context, userID, id int64) (*loan.Loan, error) {
	var row loanDatamodel.Loan
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLoanNotFound
		}
		return nil, err
	}
	return loan.FromDataModel(&row), nil
}

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	row := loan.ToDataModel(l)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	l.ID, l.CreatedAt, l.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	row := loan.ToDataModel(l)
	res := r.db.WithContext(ctx).Model(row).Where("user_id = ?", l.UserID).Select("*").Omit("id", "user_id", "created_at").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrLoanNotFound
	}
	l.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&loanDatamodel.Loan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrLoanNotFound
	}
	return nil
}

func (r *LoanRepository) CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&creditcardDatamodel.CreditCard{}).Where("id = ? AND user_id = ?", cardID, userID).Count(&count).Error
	return count > 0, err
}

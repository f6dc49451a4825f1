package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	userDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/frahmantamala/fintrack/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) load(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	row, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(row), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *user.User) error {
	return r.update(ctx, u.ID, map[string]interface{}{
		"name":           u.Name,
		"currency":       u.Currency,
		"monthly_budget": u.MonthlyBudget,
		"theme":          u.Theme,
	})
}

func (r *UserRepository) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	row, err := r.load(ctx, id)
	if err != nil {
		return "", err
	}
	return row.PasswordHash, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":        hash,
		"last_password_change": at,
	})
}

func (r *UserRepository) UpdateNotifications(ctx context.Context, id int64, n user.Notifications) error {
	return r.update(ctx, id, map[string]interface{}{
		"email_notifications": n.EmailNotifications,
		"budget_alerts":       n.BudgetAlerts,
		"bill_reminders":      n.BillReminders,
		"weekly_report":       n.WeeklyReport,
		"monthly_report":      n.MonthlyReport,
	})
}

// update writes columns through a map so false and zero values are persisted.
func (r *UserRepository) update(ctx context.Context, id int64, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

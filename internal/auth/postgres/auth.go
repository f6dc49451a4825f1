package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		User:         toAuthUser(&row),
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	var row user.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	u := toAuthUser(&row)
	return &u, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&user.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*auth.User, error) {
	row := user.User{
		Name:               name,
		Email:              email,
		PasswordHash:       passwordHash,
		Role:               user.RoleUser,
		Currency:           "USD",
		Theme:              "dark",
		EmailNotifications: true,
		BudgetAlerts:       true,
		BillReminders:      true,
		IsActive:           true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, errors.ErrEmailTaken
		}
		return nil, err
	}
	u := toAuthUser(&row)
	return &u, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func toAuthUser(row *user.User) auth.User {
	return auth.User{
		ID:    row.ID,
		Email: row.Email,
		Name:  row.Name,
		Role:  row.Role,
	}
}

func isDuplicate(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}

package user

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/auth"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
	GetPasswordHash(ctx context.Context, id int64) (string, error)
	UpdatePassword(ctx context.Context, id int64, hash string, at time.Time) error
	UpdateNotifications(ctx context.Context, id int64, n Notifications) error
}

type ServiceAPI interface {
	GetProfile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*User, error)
	UpdatePassword(ctx context.Context, userID int64, dto UpdatePasswordDTO) error
	UpdateNotifications(ctx context.Context, userID int64, dto UpdateNotificationsDTO) (*Notifications, error)
	GetSettings(ctx context.Context, userID int64) (*Settings, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, userID)
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, userID)
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Currency != nil {
		u.Currency = *dto.Currency
	}
	if dto.MonthlyBudget != nil {
		u.MonthlyBudget = *dto.MonthlyBudget
	}
	if dto.Theme != nil {
		u.Theme = *dto.Theme
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, s.lookupError(err, userID)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return u, nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID int64, dto UpdatePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	hash, err := s.repo.GetPasswordHash(ctx, userID)
	if err != nil {
		return s.lookupError(err, userID)
	}
	if err := auth.VerifyPassword(hash, dto.CurrentPassword); err != nil {
		return errors.NewValidationFieldError("currentPassword", "current password is incorrect", errors.ErrCodeInvalidPassword)
	}

	newHash, err := auth.HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, newHash, time.Now()); err != nil {
		return s.lookupError(err, userID)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *Service) UpdateNotifications(ctx context.Context, userID int64, dto UpdateNotificationsDTO) (*Notifications, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, userID)
	}

	n := dto.Apply(u.Notifications)
	if err := s.repo.UpdateNotifications(ctx, userID, n); err != nil {
		return nil, s.lookupError(err, userID)
	}
	return &n, nil
}

func (s *Service) GetSettings(ctx context.Context, userID int64) (*Settings, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, userID)
	}

	currency, theme := u.Currency, u.Theme
	if currency == "" {
		currency = DefaultCurrency
	}
	if theme == "" {
		theme = DefaultTheme
	}

	return &Settings{
		Profile:       ProfileSettings{Name: u.Name, Email: u.Email, Currency: currency},
		Notifications: u.Notifications,
		Security: SecuritySettings{
			TwoFactorEnabled:   u.TwoFactorEnabled,
			LastPasswordChange: u.LastPasswordChange,
		},
		Appearance: AppearanceSettings{Theme: theme, AccentColor: AccentColor},
	}, nil
}

func (s *Service) lookupError(err error, userID int64) error {
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return err
	}
	s.logger.Error("user store failure", "error", err, "user_id", userID)
	return errors.NewInternalError("failed to access user", err)
}

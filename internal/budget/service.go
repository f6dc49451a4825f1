package budget

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/money"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	ListByUser(ctx context.Context, userID int64) ([]*MonthlyBudget, error)
	GetByMonth(ctx context.Context, userID int64, month string) (*MonthlyBudget, error)
	Upsert(ctx context.Context, b *MonthlyBudget) error
	Delete(ctx context.Context, userID int64, month string) error
	DefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type ServiceAPI interface {
	ListBudgets(ctx context.Context, userID int64) (*ListResponse, error)
	GetBudget(ctx context.Context, userID int64, month string) (*MonthBudget, error)
	UpsertBudget(ctx context.Context, userID int64, dto UpsertBudgetDTO) (*MonthlyBudget, error)
	DeleteBudget(ctx context.Context, userID int64, month string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListBudgets(ctx context.Context, userID int64) (*ListResponse, error) {
	budgets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to list budgets", err)
	}

	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.Budget)
	}
	if budgets == nil {
		budgets = []*MonthlyBudget{}
	}

	return &ListResponse{
		Budgets: budgets,
		Summary: Summary{
			TotalMonths:   len(budgets),
			TotalBudget:   total,
			AverageBudget: money.Average(total, len(budgets)),
		},
	}, nil
}

func (s *Service) GetBudget(ctx context.Context, userID int64, month string) (*MonthBudget, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByMonth(ctx, userID, month)
	switch {
	case err == nil:
		return &MonthBudget{Month: b.Month, Budget: b.Budget, IsCustom: true}, nil
	case !stderrors.Is(err, errors.ErrBudgetNotFound):
		s.logger.Error("failed to load budget", "error", err, "user_id", userID, "month", month)
		return nil, errors.NewInternalError("failed to load budget", err)
	}

	def, err := s.repo.DefaultBudget(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.NewInternalError("failed to load default budget", err)
	}
	return &MonthBudget{Month: month, Budget: def, IsCustom: false}, nil
}

func (s *Service) UpsertBudget(ctx context.Context, userID int64, dto UpsertBudgetDTO) (*MonthlyBudget, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b := &MonthlyBudget{UserID: userID, Month: dto.Month, Budget: dto.Budget}
	if err := s.repo.Upsert(ctx, b); err != nil {
		s.logger.Error("failed to save budget", "error", err, "user_id", userID, "month", dto.Month)
		return nil, errors.NewInternalError("failed to save budget", err)
	}

	s.logger.Info("budget saved", "user_id", userID, "month", b.Month, "budget", b.Budget.String())
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, userID int64, month string) error {
	if err := validateMonth(month); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, month); err != nil {
		if stderrors.Is(err, errors.ErrBudgetNotFound) {
			return err
		}
		return errors.NewInternalError("failed to delete budget", err)
	}
	return nil
}

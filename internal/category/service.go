package category

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/fintrack/internal"
	categoryDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetPaymentMethods(ctx context.Context) ([]*categoryDatamodel.PaymentMethod, error)
}

type ServiceAPI interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetPaymentMethods(ctx context.Context) ([]*PaymentMethod, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetCategories lists the active categories.
func (s *Service) GetCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, errors.NewInternalError("failed to get categories", err)
	}

	out := make([]*Category, 0, len(rows))
	for _, row := range rows {
		c := FromDataModel(row)
		if c.IsActiveCategory() {
			out = append(out, c)
		}
	}

	s.logger.Debug("retrieved categories", "count", len(out))
	return out, nil
}

func (s *Service) GetPaymentMethods(ctx context.Context) ([]*PaymentMethod, error) {
	rows, err := s.repo.GetPaymentMethods(ctx)
	if err != nil {
		s.logger.Error("failed to get payment methods from repository", "error", err)
		return nil, errors.NewInternalError("failed to get payment methods", err)
	}

	out := make([]*PaymentMethod, 0, len(rows))
	for _, row := range rows {
		if row.IsActive {
			out = append(out, PaymentMethodFromDataModel(row))
		}
	}
	return out, nil
}

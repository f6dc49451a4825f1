package loan

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	ListByUser(ctx context.Context, userID int64) ([]*Loan, error)
	GetByID(ctx context.Context, userID, id int64) (*Loan, error)
	Create(ctx context.Context, l *Loan) error
	Update(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, userID, id int64) error
	CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error)
}

type ServiceAPI interface {
	ListLoans(ctx context.Context, userID int64, now time.Time) (*ListResponse, error)
	GetLoan(ctx context.Context, userID, id int64) (*Loan, error)
	CreateLoan(ctx context.Context, userID int64, dto CreateLoanDTO) (*Loan, error)
	UpdateLoan(ctx context.Context, userID, id int64, dto UpdateLoanDTO) (*Loan, error)
	DeleteLoan(ctx context.Context, userID, id int64) error
}

type Service struct {
	repo     RepositoryAPI
	location *time.Location
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, location: loc, logger: logger}
}

func (s *Service) ListLoans(ctx context.Context, userID int64, now time.Time) (*ListResponse, error) {
	loans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list loans", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to list loans", err)
	}

	summary := Summary{
		TotalLoans:       len(loans),
		TotalEMI:         decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, l := range loans {
		if !l.IsActive() {
			continue
		}
		summary.ActiveLoans++
		summary.TotalEMI = summary.TotalEMI.Add(l.EMIAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(l.Outstanding(now))
	}

	if loans == nil {
		loans = []*Loan{}
	}
	return &ListResponse{Loans: loans, Summary: summary}, nil
}

func (s *Service) GetLoan(ctx context.Context, userID, id int64) (*Loan, error) {
	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	return l, nil
}

func (s *Service) CreateLoan(ctx context.Context, userID int64, dto CreateLoanDTO) (*Loan, error) {
	start, end, err := dto.Validate(s.location)
	if err != nil {
		s.logger.Warn("loan validation failed", "error", err, "user_id", userID)
		return nil, err
	}
	if err := s.ensureCard(ctx, userID, dto.CreditCardID); err != nil {
		return nil, err
	}

	l := &Loan{
		UserID:        userID,
		Name:          dto.Name,
		Lender:        dto.Lender,
		Status:        dto.Status,
		EMIAmount:     dto.EMIAmount,
		EMIDate:       dto.EMIDate,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: dto.PaymentMethod,
		CreditCardID:  dto.CreditCardID,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create loan", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to create loan", err)
	}

	s.logger.Info("loan created", "loan_id", l.ID, "user_id", userID, "emi_date", l.EMIDate)
	return l, nil
}

func (s *Service) UpdateLoan(ctx context.Context, userID, id int64, dto UpdateLoanDTO) (*Loan, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}

	if dto.Name != nil {
		l.Name = *dto.Name
	}
	if dto.Lender != nil {
		l.Lender = *dto.Lender
	}
	if dto.Status != nil {
		l.Status = *dto.Status
	}
	if dto.EMIAmount != nil {
		l.EMIAmount = *dto.EMIAmount
	}
	if dto.EMIDate != nil {
		l.EMIDate = *dto.EMIDate
	}
	if dto.PaymentMethod != nil {
		l.PaymentMethod = *dto.PaymentMethod
	}
	if dto.StartDate != nil {
		if l.StartDate, err = parseDate("startDate", *dto.StartDate, s.location); err != nil {
			return nil, err
		}
	}
	if dto.EndDate != nil {
		if l.EndDate, err = parseDate("endDate", *dto.EndDate, s.location); err != nil {
			return nil, err
		}
	}
	if err := checkRange(l.StartDate, l.EndDate); err != nil {
		return nil, err
	}
	if dto.CreditCardID != nil {
		if err := s.ensureCard(ctx, userID, dto.CreditCardID); err != nil {
			return nil, err
		}
		l.CreditCardID = dto.CreditCardID
	}

	if err := s.repo.Update(ctx, l); err != nil {
		s.logger.Error("failed to update loan", "error", err, "loan_id", id)
		return nil, errors.NewInternalError("failed to update loan", err)
	}
	return l, nil
}

func (s *Service) DeleteLoan(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.lookupError(err, id)
	}
	s.logger.Info("loan deleted", "loan_id", id, "user_id", userID)
	return nil
}

func (s *Service) ensureCard(ctx context.Context, userID int64, cardID *int64) error {
	if cardID == nil {
		return nil
	}
	ok, err := s.repo.CardOwnedBy(ctx, userID, *cardID)
	if err != nil {
		return errors.NewInternalError("failed to check credit card", err)
	}
	if !ok {
		return errors.ErrCreditCardNotFound
	}
	return nil
}

func (s *Service) lookupError(err error, id int64) error {
	if stderrors.Is(err, errors.ErrLoanNotFound) {
		return err
	}
	s.logger.Error("loan lookup failed", "error", err, "loan_id", id)
	return errors.NewInternalError("failed to load loan", err)
}

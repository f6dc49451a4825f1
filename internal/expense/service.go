package expense

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/money"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

// RepositoryAPI interface defines the data access methods for expenses
type RepositoryAPI interface {
	List(ctx context.Context, userID int64, q ListQuery) ([]*Expense, int64, error)
	// Totals sums every expense of the user and the ones dated inside month.
	Totals(ctx context.Context, userID int64, month period.Window) (total, inMonth decimal.Decimal, err error)
	FindInWindow(ctx context.Context, userID int64, w period.Window) ([]*Expense, error)
	GetByID(ctx context.Context, userID, id int64) (*Expense, error)
	Create(ctx context.Context, exp *Expense) error
	Update(ctx context.Context, exp *Expense) error
	Delete(ctx context.Context, userID, id int64) error
	// BulkDelete removes the user's expenses among ids and reports the cards they were linked to.
	BulkDelete(ctx context.Context, userID int64, ids []int64) (deleted int64, cardIDs []int64, err error)
	CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error)
}

// CardBalanceSyncer recomputes a card's balance from its linked expenses.
type CardBalanceSyncer interface {
	RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error)
}

type ServiceAPI interface {
	ListExpenses(ctx context.Context, userID int64, q ListQuery, now time.Time) (*ListResponse, error)
	GetExpense(ctx context.Context, userID, id int64) (*Expense, error)
	CreateExpense(ctx context.Context, userID int64, dto CreateExpenseDTO) (*Expense, error)
	UpdateExpense(ctx context.Context, userID, id int64, dto UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error
	BulkDeleteExpenses(ctx context.Context, userID int64, dto BulkDeleteDTO) (*BulkDeleteResult, error)
	ExportExpenses(ctx context.Context, userID int64, w period.Window) ([]*Expense, error)
}

// Service handles expense business logic
type Service struct {
	repo     RepositoryAPI
	cards    CardBalanceSyncer
	location *time.Location
	logger   *slog.Logger
}

// NewService creates a new expense service
func NewService(repo RepositoryAPI, cards CardBalanceSyncer, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		cards:    cards,
		location: loc,
		logger:   logger,
	}
}

func (s *Service) ListExpenses(ctx context.Context, userID int64, q ListQuery, now time.Time) (*ListResponse, error) {
	q.Normalize()

	expenses, total, err := s.repo.List(ctx, userID, q)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to list expenses", err)
	}

	allTime, thisMonth, err := s.repo.Totals(ctx, userID, period.Month(now))
	if err != nil {
		s.logger.Error("failed to total expenses", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to total expenses", err)
	}

	totalPages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		totalPages++
	}

	return &ListResponse{
		Expenses: expenses,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
		Summary: Summary{
			TotalExpenses: allTime,
			Count:         total,
			ThisMonth:     thisMonth,
			AverageDaily:  money.Average(thisMonth, now.Day()),
		},
	}, nil
}

func (s *Service) GetExpense(ctx context.Context, userID, id int64) (*Expense, error) {
	exp, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	return exp, nil
}

func (s *Service) CreateExpense(ctx context.Context, userID int64, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	date, err := parseDate(dto.Date, s.location)
	if err != nil {
		return nil, err
	}

	if dto.CreditCardID != nil {
		if err := s.ensureCard(ctx, userID, *dto.CreditCardID); err != nil {
			return nil, err
		}
	}

	exp := &Expense{
		UserID:        userID,
		Date:          date,
		Description:   dto.Description,
		Category:      dto.Category,
		Amount:        money.Round2(dto.Amount),
		PaymentMethod: dto.PaymentMethod,
		Notes:         dto.Notes,
		CreditCardID:  dto.CreditCardID,
	}

	if err := s.repo.Create(ctx, exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to create expense", err)
	}

	if err := s.syncCards(ctx, exp.CreditCardID); err != nil {
		return nil, err
	}

	s.logger.Info("expense created successfully",
		"expense_id", exp.ID,
		"user_id", userID,
		"amount", exp.Amount.String(),
		"category", exp.Category)

	return exp, nil
}

func (s *Service) UpdateExpense(ctx context.Context, userID, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exp, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	oldCard := exp.CreditCardID

	if dto.Date != nil {
		date, err := parseDate(*dto.Date, s.location)
		if err != nil {
			return nil, err
		}
		exp.Date = date
	}
	if dto.Description != nil {
		exp.Description = *dto.Description
	}
	if dto.Category != nil {
		exp.Category = *dto.Category
	}
	if dto.Amount != nil {
		exp.Amount = money.Round2(*dto.Amount)
	}
	if dto.PaymentMethod != nil {
		exp.PaymentMethod = *dto.PaymentMethod
	}
	if dto.Notes != nil {
		exp.Notes = dto.Notes
	}
	switch {
	case dto.ClearCreditCard:
		exp.CreditCardID = nil
	case dto.CreditCardID != nil:
		if err := s.ensureCard(ctx, userID, *dto.CreditCardID); err != nil {
			return nil, err
		}
		exp.CreditCardID = dto.CreditCardID
	}

	if err := s.repo.Update(ctx, exp); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, errors.NewInternalError("failed to update expense", err)
	}

	if err := s.syncCards(ctx, oldCard, exp.CreditCardID); err != nil {
		return nil, err
	}
	return exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, userID, id int64) error {
	exp, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return s.lookupError(err, id)
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.lookupError(err, id)
	}

	if err := s.syncCards(ctx, exp.CreditCardID); err != nil {
		return err
	}
	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID)
	return nil
}

func (s *Service) BulkDeleteExpenses(ctx context.Context, userID int64, dto BulkDeleteDTO) (*BulkDeleteResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	deleted, cardIDs, err := s.repo.BulkDelete(ctx, userID, dto.ExpenseIDs)
	if err != nil {
		s.logger.Error("failed to bulk delete expenses", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to delete expenses", err)
	}

	cards := make([]*int64, len(cardIDs))
	for i := range cardIDs {
		cards[i] = &cardIDs[i]
	}
	if err := s.syncCards(ctx, cards...); err != nil {
		return nil, err
	}

	s.logger.Info("expenses bulk deleted", "user_id", userID, "requested", len(dto.ExpenseIDs), "deleted", deleted)
	return &BulkDeleteResult{DeletedCount: deleted}, nil
}

// ExportExpenses returns the expenses rendered by the xlsx export, oldest first.
func (s *Service) ExportExpenses(ctx context.Context, userID int64, w period.Window) ([]*Expense, error) {
	expenses, err := s.repo.FindInWindow(ctx, userID, w)
	if err != nil {
		s.logger.Error("failed to load expenses for export", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to export expenses", err)
	}
	return expenses, nil
}

func (s *Service) ensureCard(ctx context.Context, userID, cardID int64) error {
	ok, err := s.repo.CardOwnedBy(ctx, userID, cardID)
	if err != nil {
		return errors.NewInternalError("failed to check credit card", err)
	}
	if !ok {
		return errors.ErrCreditCardNotFound
	}
	return nil
}

// syncCards recomputes each distinct non-nil card once.
func (s *Service) syncCards(ctx context.Context, cardIDs ...*int64) error {
	if s.cards == nil {
		return nil
	}
	seen := make(map[int64]bool, len(cardIDs))
	for _, id := range cardIDs {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if _, err := s.cards.RecomputeBalance(ctx, *id); err != nil {
			if stderrors.Is(err, errors.ErrCreditCardNotFound) {
				s.logger.Warn("linked card vanished before recompute", "card_id", *id)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Service) lookupError(err error, id int64) error {
	if stderrors.Is(err, errors.ErrExpenseNotFound) {
		return err
	}
	s.logger.Error("expense lookup failed", "error", err, "expense_id", id)
	return errors.NewInternalError("failed to load expense", err)
}

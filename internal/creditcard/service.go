package creditcard

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/common/money"
	"github.com/frahmantamala/fintrack/internal/core/events"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

const upcomingWindowDays = 30

type RepositoryAPI interface {
	ListByUser(ctx context.Context, userID int64) ([]*CreditCard, error)
	GetByID(ctx context.Context, userID, id int64) (*CreditCard, error)
	Create(ctx context.Context, card *CreditCard) error
	Update(ctx context.Context, card *CreditCard) error
	// Delete removes the card and unlinks its expenses in one transaction.
	Delete(ctx context.Context, userID, id int64) error
	// LinkExpense points the user's expense at the card and returns the card it was linked to before.
	LinkExpense(ctx context.Context, userID, cardID, expenseID int64) (previousCardID *int64, err error)
	// RecomputeBalance sets current_balance = balance_adjustment + SUM(linked expenses).
	RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error)
}

type ServiceAPI interface {
	ListCards(ctx context.Context, userID int64, now time.Time) (*ListResponse, error)
	GetCard(ctx context.Context, userID, id int64) (*CreditCard, error)
	CreateCard(ctx context.Context, userID int64, dto CreateCardDTO) (*CreditCard, error)
	UpdateCard(ctx context.Context, userID, id int64, dto UpdateCardDTO) (*CreditCard, error)
	DeleteCard(ctx context.Context, userID, id int64) error
	LinkExpense(ctx context.Context, userID, cardID int64, dto LinkExpenseDTO) (*CreditCard, error)
	RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) ListCards(ctx context.Context, userID int64, now time.Time) (*ListResponse, error) {
	cards, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list credit cards", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to list credit cards", err)
	}

	resp := &ListResponse{
		Cards: make([]CardView, 0, len(cards)),
		Summary: Summary{
			TotalCards:       len(cards),
			TotalCreditLimit: decimal.Zero,
			TotalBalance:     decimal.Zero,
			UpcomingPayments: []UpcomingPayment{},
		},
	}

	var utilizationSum float64
	for _, c := range cards {
		view := CardView{
			CreditCard:      c,
			Utilization:     c.Utilization(),
			AvailableCredit: c.AvailableCredit(),
			Schedule:        c.ScheduleAt(now),
		}
		resp.Cards = append(resp.Cards, view)

		resp.Summary.TotalCreditLimit = resp.Summary.TotalCreditLimit.Add(c.CreditLimit)
		resp.Summary.TotalBalance = resp.Summary.TotalBalance.Add(c.CurrentBalance)
		utilizationSum += view.Utilization

		if view.DaysUntilDue <= upcomingWindowDays && c.CurrentBalance.IsPositive() {
			resp.Summary.UpcomingPayments = append(resp.Summary.UpcomingPayments, UpcomingPayment{
				CardID:       c.ID,
				CardName:     c.Name,
				Amount:       c.CurrentBalance,
				DueDate:      view.NextDueDate.Format(period.DateLayout),
				DaysUntilDue: view.DaysUntilDue,
			})
		}
	}

	if len(cards) > 0 {
		resp.Summary.AverageUtilization = money.RoundFloat(utilizationSum / float64(len(cards)))
	}
	sort.SliceStable(resp.Summary.UpcomingPayments, func(i, j int) bool {
		return resp.Summary.UpcomingPayments[i].DaysUntilDue < resp.Summary.UpcomingPayments[j].DaysUntilDue
	})

	return resp, nil
}

func (s *Service) GetCard(ctx context.Context, userID, id int64) (*CreditCard, error) {
	card, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, "get", id)
	}
	return card, nil
}

func (s *Service) CreateCard(ctx context.Context, userID int64, dto CreateCardDTO) (*CreditCard, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("credit card validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	card := &CreditCard{
		UserID:              userID,
		Name:                dto.Name,
		LastFourDigits:      dto.LastFourDigits,
		Issuer:              dto.Issuer,
		BillingCycle:        dto.BillingCycle,
		DueDate:             dto.DueDate,
		CreditLimit:         dto.CreditLimit,
		BalanceAdjustment:   decimal.Zero,
		CurrentBalance:      decimal.Zero,
		PreviousOutstanding: decimal.Zero,
	}
	if dto.CurrentBalance != nil {
		card.BalanceAdjustment = *dto.CurrentBalance
		card.CurrentBalance = *dto.CurrentBalance
	}
	if dto.PreviousOutstanding != nil {
		card.PreviousOutstanding = *dto.PreviousOutstanding
	}

	if err := s.repo.Create(ctx, card); err != nil {
		s.logger.Error("failed to create credit card", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to create credit card", err)
	}

	s.logger.Info("credit card created", "card_id", card.ID, "user_id", userID)
	return card, nil
}

func (s *Service) UpdateCard(ctx context.Context, userID, id int64, dto UpdateCardDTO) (*CreditCard, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	card, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, "update", id)
	}

	if dto.Name != nil {
		card.Name = *dto.Name
	}
	if dto.LastFourDigits != nil {
		card.LastFourDigits = *dto.LastFourDigits
	}
	if dto.Issuer != nil {
		card.Issuer = *dto.Issuer
	}
	if dto.BillingCycle != nil {
		card.BillingCycle = *dto.BillingCycle
	}
	if dto.DueDate != nil {
		card.DueDate = *dto.DueDate
	}
	if dto.CreditLimit != nil {
		card.CreditLimit = *dto.CreditLimit
	}
	if dto.PreviousOutstanding != nil {
		card.PreviousOutstanding = *dto.PreviousOutstanding
	}
	if dto.CurrentBalance != nil {
		linked := card.CurrentBalance.Sub(card.BalanceAdjustment)
		card.BalanceAdjustment = dto.CurrentBalance.Sub(linked)
	}

	if err := s.repo.Update(ctx, card); err != nil {
		s.logger.Error("failed to update credit card", "error", err, "card_id", id)
		return nil, errors.NewInternalError("failed to update credit card", err)
	}

	balance, err := s.RecomputeBalance(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	card.CurrentBalance = balance
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.lookupError(err, "delete", id)
	}
	s.logger.Info("credit card deleted", "card_id", id, "user_id", userID)
	return nil
}

// LinkExpense attaches an existing expense to the card. Both the new card and
// the card the expense was previously on are recomputed.
func (s *Service) LinkExpense(ctx context.Context, userID, cardID int64, dto LinkExpenseDTO) (*CreditCard, error) {
	if dto.ExpenseID <= 0 {
		return nil, errors.NewValidationFieldError("expenseId", "expenseId is required", errors.ErrCodeValidationFailed)
	}

	card, err := s.repo.GetByID(ctx, userID, cardID)
	if err != nil {
		return nil, s.lookupError(err, "link", cardID)
	}

	previous, err := s.repo.LinkExpense(ctx, userID, cardID, dto.ExpenseID)
	if err != nil {
		if stderrors.Is(err, errors.ErrExpenseNotFound) {
			return nil, err
		}
		s.logger.Error("failed to link expense", "error", err, "card_id", cardID, "expense_id", dto.ExpenseID)
		return nil, errors.NewInternalError("failed to link expense", err)
	}

	if previous != nil && *previous != cardID {
		if _, err := s.RecomputeBalance(ctx, *previous); err != nil {
			return nil, err
		}
	}

	balance, err := s.RecomputeBalance(ctx, cardID)
	if err != nil {
		return nil, err
	}
	card.CurrentBalance = balance
	return card, nil
}

func (s *Service) RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error) {
	balance, err := s.repo.RecomputeBalance(ctx, cardID)
	if err != nil {
		if stderrors.Is(err, errors.ErrCreditCardNotFound) {
			return decimal.Zero, err
		}
		s.logger.Error("failed to recompute card balance", "error", err, "card_id", cardID)
		return decimal.Zero, errors.NewInternalError("failed to recompute card balance", err)
	}

	s.logger.Debug("card balance recomputed", "card_id", cardID, "balance", balance.String())
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewCardBalanceRecomputedEvent(cardID, balance)); err != nil {
			s.logger.Warn("failed to publish balance event", "error", err, "card_id", cardID)
		}
	}
	return balance, nil
}

func (s *Service) lookupError(err error, op string, id int64) error {
	if stderrors.Is(err, errors.ErrCreditCardNotFound) {
		return err
	}
	s.logger.Error("credit card lookup failed", "op", op, "error", err, "card_id", id)
	return errors.NewInternalError("failed to load credit card", err)
}

package sip

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	ListByUser(ctx context.Context, userID int64) ([]*SIP, error)
	GetByID(ctx context.Context, userID, id int64) (*SIP, error)
	Create(ctx context.Context, s *SIP) error
	Update(ctx context.Context, s *SIP) error
	Delete(ctx context.Context, userID, id int64) error
	CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error)
}

type ServiceAPI interface {
	ListSIPs(ctx context.Context, userID int64, now time.Time) (*ListResponse, error)
	GetSIP(ctx context.Context, userID, id int64) (*SIP, error)
	CreateSIP(ctx context.Context, userID int64, dto CreateSIPDTO) (*SIP, error)
	UpdateSIP(ctx context.Context, userID, id int64, dto UpdateSIPDTO) (*SIP, error)
	DeleteSIP(ctx context.Context, userID, id int64) error
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

func (s *Service) ListSIPs(ctx context.Context, userID int64, now time.Time) (*ListResponse, error) {
	sips, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list sips", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to list SIPs", err)
	}

	summary := Summary{
		TotalSIPs:         len(sips),
		MonthlyInvestment: decimal.Zero,
		TotalInvested:     decimal.Zero,
	}
	for _, p := range sips {
		summary.TotalInvested = summary.TotalInvested.Add(p.Invested(now))
		if p.IsActive() {
			summary.ActiveSIPs++
			summary.MonthlyInvestment = summary.MonthlyInvestment.Add(p.SIPAmount)
		}
	}

	if sips == nil {
		sips = []*SIP{}
	}
	return &ListResponse{SIPs: sips, Summary: summary}, nil
}

func (s *Service) GetSIP(ctx context.Context, userID, id int64) (*SIP, error) {
	p, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}
	return p, nil
}

func (s *Service) CreateSIP(ctx context.Context, userID int64, dto CreateSIPDTO) (*SIP, error) {
	start, end, err := dto.Validate(s.location)
	if err != nil {
		s.logger.Warn("sip validation failed", "error", err, "user_id", userID)
		return nil, err
	}
	if err := s.ensureCard(ctx, userID, dto.CreditCardID); err != nil {
		return nil, err
	}

	p := &SIP{
		UserID:        userID,
		Name:          strings.TrimSpace(dto.Name),
		FundName:      strings.TrimSpace(dto.FundName),
		Status:        dto.Status,
		SIPAmount:     dto.SIPAmount,
		SIPDate:       dto.SIPDate,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: dto.PaymentMethod,
		CreditCardID:  dto.CreditCardID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create sip", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to create SIP", err)
	}

	s.logger.Info("sip created", "sip_id", p.ID, "user_id", userID, "sip_date", p.SIPDate)
	return p, nil
}

func (s *Service) UpdateSIP(ctx context.Context, userID, id int64, dto UpdateSIPDTO) (*SIP, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, s.lookupError(err, id)
	}

	if dto.Name != nil {
		p.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.FundName != nil {
		p.FundName = strings.TrimSpace(*dto.FundName)
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}
	if dto.SIPAmount != nil {
		p.SIPAmount = *dto.SIPAmount
	}
	if dto.SIPDate != nil {
		p.SIPDate = *dto.SIPDate
	}
	if dto.PaymentMethod != nil {
		p.PaymentMethod = *dto.PaymentMethod
	}
	if dto.StartDate != nil {
		if p.StartDate, err = parseDate("startDate", *dto.StartDate, s.location); err != nil {
			return nil, err
		}
	}
	switch {
	case dto.ClearEndDate:
		p.EndDate = nil
	case dto.EndDate != nil:
		if p.EndDate, err = parseOptionalDate(dto.EndDate, s.location); err != nil {
			return nil, err
		}
	}
	if err := checkRange(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	if dto.CreditCardID != nil {
		if err := s.ensureCard(ctx, userID, dto.CreditCardID); err != nil {
			return nil, err
		}
		p.CreditCardID = dto.CreditCardID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update sip", "error", err, "sip_id", id)
		return nil, errors.NewInternalError("failed to update SIP", err)
	}
	return p, nil
}

func (s *Service) DeleteSIP(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return s.lookupError(err, id)
	}
	s.logger.Info("sip deleted", "sip_id", id, "user_id", userID)
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
	if stderrors.Is(err, errors.ErrSIPNotFound) {
		return err
	}
	s.logger.Error("sip lookup failed", "error", err, "sip_id", id)
	return errors.NewInternalError("failed to load SIP", err)
}

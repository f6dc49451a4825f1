package sip_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/sip"
)

type mockSIPRepository struct {
	sips   map[int64]*sip.SIP
	nextID int64
}

func newMockSIPRepository() *mockSIPRepository {
	return &mockSIPRepository{sips: map[int64]*sip.SIP{}, nextID: 1}
}

func (m *mockSIPRepository) ListByUser(ctx context.Context, userID int64) ([]*sip.SIP, error) {
	var out []*sip.SIP
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.sips[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockSIPRepository) GetByID(ctx context.Context, userID, id int64) (*sip.SIP, error) {
	p, ok := m.sips[id]
	if !ok || p.UserID != userID {
		return nil, errors.ErrSIPNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockSIPRepository) Create(ctx context.Context, p *sip.SIP) error {
	p.ID = m.nextID
	m.nextID++
	copied := *p
	m.sips[p.ID] = &copied
	return nil
}

func (m *mockSIPRepository) Update(ctx context.Context, p *sip.SIP) error {
	copied := *p
	m.sips[p.ID] = &copied
	return nil
}

func (m *mockSIPRepository) Delete(ctx context.Context, userID, id int64) error {
	if p, ok := m.sips[id]; !ok || p.UserID != userID {
		return errors.ErrSIPNotFound
	}
	delete(m.sips, id)
	return nil
}

func (m *mockSIPRepository) CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error) {
	return false, nil
}

var _ = Describe("SIPService", func() {
	var (
		repo    *mockSIPRepository
		service *sip.Service
		ctx     context.Context
	)

	validDTO := func() sip.CreateSIPDTO {
		return sip.CreateSIPDTO{
			Name:          "Retirement",
			FundName:      "Index Fund",
			SIPAmount:     decimal.NewFromInt(200),
			SIPDate:       10,
			StartDate:     "2025-01-10",
			PaymentMethod: "Bank Transfer",
		}
	}

	BeforeEach(func() {
		repo = newMockSIPRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = sip.NewService(repo, time.UTC, logger)
		ctx = context.Background()
	})

	Describe("CreateSIP", func() {
		It("keeps the end date open when none is given", func() {
			p, err := service.CreateSIP(ctx, 1, validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(p.EndDate).To(BeNil())
			Expect(p.Status).To(Equal(sip.StatusActive))
		})

		It("treats a blank end date as open ended", func() {
			dto := validDTO()
			blank := ""
			dto.EndDate = &blank

			p, err := service.CreateSIP(ctx, 1, dto)

			Expect(err).NotTo(HaveOccurred())
			Expect(p.EndDate).To(BeNil())
		})

		It("rejects an end date before the start", func() {
			dto := validDTO()
			end := "2024-12-01"
			dto.EndDate = &end

			_, err := service.CreateSIP(ctx, 1, dto)

			Expect(err).To(HaveOccurred())
		})

		It("rejects a missing fund name", func() {
			dto := validDTO()
			dto.FundName = " "

			_, err := service.CreateSIP(ctx, 1, dto)

			Expect(err).To(HaveOccurred())
		})

		It("rejects a card the user does not own", func() {
			dto := validDTO()
			card := int64(3)
			dto.CreditCardID = &card

			_, err := service.CreateSIP(ctx, 1, dto)

			Expect(err).To(MatchError(errors.ErrCreditCardNotFound))
		})
	})

	Describe("ListSIPs", func() {
		It("counts monthly investment for active plans and invested totals for all", func() {
			// Given an active plan and a paused plan that ran three months
			_, err := service.CreateSIP(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())
			paused := validDTO()
			paused.Status = sip.StatusPaused
			paused.SIPAmount = decimal.NewFromInt(100)
			end := "2025-03-10"
			paused.EndDate = &end
			_, err = service.CreateSIP(ctx, 1, paused)
			Expect(err).NotTo(HaveOccurred())

			// When listing in June 2025
			resp, err := service.ListSIPs(ctx, 1, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Summary.TotalSIPs).To(Equal(2))
			Expect(resp.Summary.ActiveSIPs).To(Equal(1))
			Expect(resp.Summary.MonthlyInvestment.String()).To(Equal("200"))
			Expect(resp.Summary.TotalInvested.String()).To(Equal("1500"))
		})
	})

	Describe("UpdateSIP", func() {
		It("clears the end date on request", func() {
			dto := validDTO()
			end := "2026-01-10"
			dto.EndDate = &end
			created, err := service.CreateSIP(ctx, 1, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.EndDate).NotTo(BeNil())

			updated, err := service.UpdateSIP(ctx, 1, created.ID, sip.UpdateSIPDTO{ClearEndDate: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.EndDate).To(BeNil())
		})

		It("returns not found for another user's plan", func() {
			created, err := service.CreateSIP(ctx, 1, validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateSIP(ctx, 9, created.ID, sip.UpdateSIPDTO{})

			Expect(err).To(MatchError(errors.ErrSIPNotFound))
		})
	})

	It("deletes plans", func() {
		created, err := service.CreateSIP(ctx, 1, validDTO())
		Expect(err).NotTo(HaveOccurred())

		Expect(service.DeleteSIP(ctx, 1, created.ID)).To(Succeed())
		Expect(service.DeleteSIP(ctx, 1, created.ID)).To(MatchError(errors.ErrSIPNotFound))
	})
})

package recurring_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/events"
	"github.com/frahmantamala/fintrack/internal/recurring"
)

type mockRuleRepository struct {
	rules []recurring.Rule
}

func (m *mockRuleRepository) find(userID int64, ruleType string, d int) []recurring.Rule {
	var out []recurring.Rule
	for _, r := range m.rules {
		if r.UserID == userID && r.Type == ruleType && r.DayOfMonth == d && r.Status == recurring.StatusActive {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockRuleRepository) FindActiveLoans(ctx context.Context, userID int64, d int) ([]recurring.Rule, error) {
	return m.find(userID, recurring.TypeLoan, d), nil
}

func (m *mockRuleRepository) FindActiveSIPs(ctx context.Context, userID int64, d int) ([]recurring.Rule, error) {
	return m.find(userID, recurring.TypeSIP, d), nil
}

func (m *mockRuleRepository) UsersWithDueRules(ctx context.Context, d int) ([]int64, error) {
	seen := map[int64]bool{}
	var users []int64
	for _, r := range m.rules {
		if r.DayOfMonth == d && r.Status == recurring.StatusActive && !seen[r.UserID] {
			seen[r.UserID] = true
			users = append(users, r.UserID)
		}
	}
	return users, nil
}

// mockLedger enforces the one-expense-per-rule-and-period constraint like the unique index does.
type mockLedger struct {
	mu        sync.Mutex
	expenses  []*recurring.Obligation
	booked    map[string]bool
	hideCheck bool
	failUser  int64
	nextID    int64
}

func newMockLedger() *mockLedger {
	return &mockLedger{booked: map[string]bool{}, nextID: 100}
}

func ledgerKey(userID int64, ruleType string, ruleID int64, periodKey string) string {
	return fmt.Sprintf("%d/%s/%d/%s", userID, ruleType, ruleID, periodKey)
}

func (m *mockLedger) HasMaterialized(ctx context.Context, userID int64, ruleType string, ruleID int64, periodKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideCheck {
		return false, nil
	}
	return m.booked[ledgerKey(userID, ruleType, ruleID, periodKey)], nil
}

func (m *mockLedger) CreateMaterialized(ctx context.Context, o *recurring.Obligation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.UserID == m.failUser {
		return stderrors.New("connection reset")
	}
	k := ledgerKey(o.UserID, o.RuleType, o.RuleID, o.Period)
	if m.booked[k] {
		return errors.ErrAlreadyMaterialized
	}
	m.booked[k] = true
	o.ExpenseID = m.nextID
	m.nextID++
	m.expenses = append(m.expenses, o)
	return nil
}

func (m *mockLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expenses)
}

type recordingSyncer struct {
	mu    sync.Mutex
	cards []int64
}

func (s *recordingSyncer) RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, cardID)
	return decimal.Zero, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var _ = Describe("RecurringService", func() {
	var (
		rules     *mockRuleRepository
		ledger    *mockLedger
		syncer    *recordingSyncer
		publisher *recordingPublisher
		service   *recurring.Service
		ctx       context.Context
		carLoan   recurring.Rule
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		carLoan = recurring.Rule{
			Type:          recurring.TypeLoan,
			ID:            1,
			UserID:        1,
			Name:          "Car",
			Amount:        decimal.NewFromInt(500),
			DayOfMonth:    1,
			StartDate:     day(2025, 1, 1),
			EndDate:       datePtr(day(2026, 12, 31)),
			PaymentMethod: "Bank Transfer",
			Status:        recurring.StatusActive,
		}
		rules = &mockRuleRepository{rules: []recurring.Rule{carLoan}}
		ledger = newMockLedger()
		syncer = &recordingSyncer{}
		publisher = &recordingPublisher{}

		evaluator := recurring.NewEvaluator(rules, ledger, logger)
		materializer := recurring.NewMaterializer(evaluator, ledger, syncer, publisher, logger)
		service = recurring.NewService(rules, evaluator, materializer, time.UTC, recurring.PoolConfig{MaxWorkers: 2, QueueSize: 2}, logger)
		ctx = context.Background()
	})

	Describe("MaterializeDueObligations", func() {
		It("books a due EMI once per month", func() {
			// Given an active loan due on the 1st
			now := at(2026, 1, 1, 9)

			// When materializing twice on the same day
			first, err := service.MaterializeDueObligations(ctx, 1, now)
			Expect(err).NotTo(HaveOccurred())
			second, err := service.MaterializeDueObligations(ctx, 1, now)
			Expect(err).NotTo(HaveOccurred())

			// Then exactly one expense exists
			Expect(first).To(HaveLen(1))
			Expect(first[0].RuleName).To(Equal("Car"))
			Expect(first[0].Period).To(Equal("2026-01"))
			Expect(second).To(BeEmpty())
			Expect(ledger.count()).To(Equal(1))

			booked := ledger.expenses[0]
			Expect(booked.Category).To(Equal("Loan EMI"))
			Expect(booked.Amount.String()).To(Equal("500"))
			Expect(booked.Date).To(Equal(day(2026, 1, 1)))
			Expect(booked.Description).To(Equal("EMI - Car"))
		})

		It("publishes an event per booked obligation", func() {
			_, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 1, 9))
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeObligationMaterialized))
		})

		It("swallows a conflict from a concurrent writer", func() {
			// Given another request booked the EMI after our due check
			_, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 1, 9))
			Expect(err).NotTo(HaveOccurred())
			ledger.hideCheck = true

			// When we try to book it again
			results, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 1, 10))

			// Then the conflict is a no-op
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
			Expect(ledger.count()).To(Equal(1))
		})

		It("recomputes the linked card balance", func() {
			card := int64(7)
			rules.rules[0].CreditCardID = &card

			_, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 1, 9))

			Expect(err).NotTo(HaveOccurred())
			Expect(syncer.cards).To(ConsistOf(int64(7)))
		})

		It("does nothing on other days", func() {
			results, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 2, 9))

			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
			Expect(results).NotTo(BeNil())
		})

		It("propagates store errors", func() {
			ledger.failUser = 1

			_, err := service.MaterializeDueObligations(ctx, 1, at(2026, 1, 1, 9))

			Expect(err).To(HaveOccurred())
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeInternal))
		})
	})

	Describe("ProcessEMIs and ProcessSIPs", func() {
		BeforeEach(func() {
			rules.rules = append(rules.rules, recurring.Rule{
				Type:          recurring.TypeSIP,
				ID:            2,
				UserID:        1,
				Name:          "Retirement",
				FundName:      "Index Fund",
				Amount:        decimal.NewFromInt(200),
				DayOfMonth:    1,
				StartDate:     day(2025, 1, 1),
				PaymentMethod: "UPI",
				Status:        recurring.StatusActive,
			})
		})

		It("only processes the requested rule type", func() {
			emis, err := service.ProcessEMIs(ctx, 1, at(2026, 1, 1, 9))
			Expect(err).NotTo(HaveOccurred())
			Expect(emis).To(HaveLen(1))
			Expect(emis[0].RuleType).To(Equal(recurring.TypeLoan))

			sips, err := service.ProcessSIPs(ctx, 1, at(2026, 1, 1, 9))
			Expect(err).NotTo(HaveOccurred())
			Expect(sips).To(HaveLen(1))
			Expect(sips[0].RuleType).To(Equal(recurring.TypeSIP))
			Expect(ledger.expenses[1].Description).To(Equal("SIP - Retirement (Index Fund)"))
		})

		It("keeps booking an open ended SIP every month", func() {
			for _, m := range []time.Month{time.February, time.March, time.April} {
				results, err := service.ProcessSIPs(ctx, 1, at(2026, m, 1, 9))
				Expect(err).NotTo(HaveOccurred())
				Expect(results).To(HaveLen(1))
			}
		})
	})

	Describe("ProcessForUser", func() {
		It("materializes on login", func() {
			Expect(service.ProcessForUser(ctx, 1, at(2026, 1, 1, 9))).To(Succeed())
			Expect(ledger.count()).To(Equal(1))
		})
	})

	Describe("ProcessAll", func() {
		It("sweeps every user and survives a failing one", func() {
			// Given three users with loans due today, one with a broken store
			for _, userID := range []int64{2, 3} {
				r := carLoan
				r.ID = userID * 10
				r.UserID = userID
				rules.rules = append(rules.rules, r)
			}
			ledger.failUser = 3

			// When the worker sweeps
			created, err := service.ProcessAll(ctx, at(2026, 1, 1, 6))

			// Then the healthy users are booked
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(Equal(2))
			Expect(ledger.count()).To(Equal(2))
		})

		It("returns zero when nothing is due", func() {
			created, err := service.ProcessAll(ctx, at(2026, 1, 15, 6))

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeZero())
		})
	})
})

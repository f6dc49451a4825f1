package budget_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/budget"
)

type mockBudgetRepository struct {
	budgets  map[string]*budget.MonthlyBudget
	defaults map[int64]decimal.Decimal
}

func key(userID int64, month string) string {
	return fmt.Sprintf("%d/%s", userID, month)
}

func (m *mockBudgetRepository) ListByUser(ctx context.Context, userID int64) ([]*budget.MonthlyBudget, error) {
	var out []*budget.MonthlyBudget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (m *mockBudgetRepository) GetByMonth(ctx context.Context, userID int64, month string) (*budget.MonthlyBudget, error) {
	b, ok := m.budgets[key(userID, month)]
	if !ok {
		return nil, errors.ErrBudgetNotFound
	}
	return b, nil
}

func (m *mockBudgetRepository) Upsert(ctx context.Context, b *budget.MonthlyBudget) error {
	copied := *b
	m.budgets[key(b.UserID, b.Month)] = &copied
	return nil
}

func (m *mockBudgetRepository) Delete(ctx context.Context, userID int64, month string) error {
	if _, ok := m.budgets[key(userID, month)]; !ok {
		return errors.ErrBudgetNotFound
	}
	delete(m.budgets, key(userID, month))
	return nil
}

func (m *mockBudgetRepository) DefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	d, ok := m.defaults[userID]
	if !ok {
		return decimal.Zero, errors.ErrUserNotFound
	}
	return d, nil
}

var _ = Describe("BudgetService", func() {
	var (
		repo    *mockBudgetRepository
		service *budget.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = &mockBudgetRepository{
			budgets:  map[string]*budget.MonthlyBudget{},
			defaults: map[int64]decimal.Decimal{1: decimal.NewFromInt(2000)},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = budget.NewService(repo, logger)
		ctx = context.Background()
	})

	Describe("GetBudget", func() {
		It("falls back to the user's default budget", func() {
			b, err := service.GetBudget(ctx, 1, "2026-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(b.IsCustom).To(BeFalse())
			Expect(b.Budget.String()).To(Equal("2000"))
		})

		It("prefers a monthly override", func() {
			_, err := service.UpsertBudget(ctx, 1, budget.UpsertBudgetDTO{Month: "2026-03", Budget: decimal.NewFromInt(2500)})
			Expect(err).NotTo(HaveOccurred())

			b, err := service.GetBudget(ctx, 1, "2026-03")

			Expect(err).NotTo(HaveOccurred())
			Expect(b.IsCustom).To(BeTrue())
			Expect(b.Budget.String()).To(Equal("2500"))
		})

		It("rejects malformed months", func() {
			_, err := service.GetBudget(ctx, 1, "March")

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeValidation))
		})

		It("reports a missing user", func() {
			_, err := service.GetBudget(ctx, 5, "2026-03")
			Expect(err).To(MatchError(errors.ErrUserNotFound))
		})
	})

	Describe("ListBudgets", func() {
		It("summarises every stored month", func() {
			for month, amount := range map[string]int64{"2026-01": 1000, "2026-02": 1500, "2026-03": 2000} {
				_, err := service.UpsertBudget(ctx, 1, budget.UpsertBudgetDTO{Month: month, Budget: decimal.NewFromInt(amount)})
				Expect(err).NotTo(HaveOccurred())
			}

			resp, err := service.ListBudgets(ctx, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Budgets).To(HaveLen(3))
			Expect(resp.Budgets[0].Month).To(Equal("2026-03"))
			Expect(resp.Summary.TotalMonths).To(Equal(3))
			Expect(resp.Summary.TotalBudget.String()).To(Equal("4500"))
			Expect(resp.Summary.AverageBudget.String()).To(Equal("1500"))
		})

		It("averages to zero without budgets", func() {
			resp, err := service.ListBudgets(ctx, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Budgets).To(BeEmpty())
			Expect(resp.Summary.AverageBudget.IsZero()).To(BeTrue())
		})
	})

	Describe("UpsertBudget", func() {
		It("rejects negative budgets", func() {
			_, err := service.UpsertBudget(ctx, 1, budget.UpsertBudgetDTO{Month: "2026-01", Budget: decimal.NewFromInt(-1)})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeleteBudget", func() {
		It("returns not found when the month has no override", func() {
			Expect(service.DeleteBudget(ctx, 1, "2026-01")).To(MatchError(errors.ErrBudgetNotFound))
		})
	})
})

package expense_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/expense"
	"github.com/frahmantamala/fintrack/internal/period"
)

// Mock repository for testing
type mockExpenseRepository struct {
	expenses  map[int64]*expense.Expense
	cards     map[int64]int64 // card id -> owner
	listQuery expense.ListQuery
	createErr error
	nextID    int64
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{
		expenses: make(map[int64]*expense.Expense),
		cards:    map[int64]int64{10: 1, 20: 1, 30: 2},
		nextID:   1,
	}
}

func (m *mockExpenseRepository) List(ctx context.Context, userID int64, q expense.ListQuery) ([]*expense.Expense, int64, error) {
	m.listQuery = q
	var out []*expense.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockExpenseRepository) Totals(ctx context.Context, userID int64, month period.Window) (decimal.Decimal, decimal.Decimal, error) {
	total, inMonth := decimal.Zero, decimal.Zero
	for _, e := range m.expenses {
		if e.UserID != userID {
			continue
		}
		total = total.Add(e.Amount)
		if month.Contains(e.Date) {
			inMonth = inMonth.Add(e.Amount)
		}
	}
	return total, inMonth, nil
}

func (m *mockExpenseRepository) FindInWindow(ctx context.Context, userID int64, w period.Window) ([]*expense.Expense, error) {
	var out []*expense.Expense
	for id := int64(1); id < m.nextID; id++ {
		if e, ok := m.expenses[id]; ok && e.UserID == userID && w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) GetByID(ctx context.Context, userID, id int64) (*expense.Expense, error) {
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, errors.ErrExpenseNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	if m.createErr != nil {
		return m.createErr
	}
	exp.ID = m.nextID
	m.nextID++
	copied := *exp
	m.expenses[exp.ID] = &copied
	return nil
}

func (m *mockExpenseRepository) Update(ctx context.Context, exp *expense.Expense) error {
	copied := *exp
	m.expenses[exp.ID] = &copied
	return nil
}

func (m *mockExpenseRepository) Delete(ctx context.Context, userID, id int64) error {
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseRepository) BulkDelete(ctx context.Context, userID int64, ids []int64) (int64, []int64, error) {
	var deleted int64
	var cards []int64
	for _, id := range ids {
		e, ok := m.expenses[id]
		if !ok || e.UserID != userID {
			continue
		}
		if e.CreditCardID != nil {
			cards = append(cards, *e.CreditCardID)
		}
		delete(m.expenses, id)
		deleted++
	}
	return deleted, cards, nil
}

func (m *mockExpenseRepository) CardOwnedBy(ctx context.Context, userID, cardID int64) (bool, error) {
	owner, ok := m.cards[cardID]
	return ok && owner == userID, nil
}

type mockCardSyncer struct {
	recomputed []int64
}

func (m *mockCardSyncer) RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error) {
	m.recomputed = append(m.recomputed, cardID)
	return decimal.Zero, nil
}

var _ = Describe("ExpenseService", func() {
	var (
		expenseService *expense.Service
		mockRepo       *mockExpenseRepository
		syncer         *mockCardSyncer
		ctx            context.Context
	)

	card := func(id int64) *int64 { return &id }

	validDTO := func() expense.CreateExpenseDTO {
		return expense.CreateExpenseDTO{
			Date:          "2026-01-15",
			Description:   "Weekly groceries",
			Category:      "Food & Dining",
			Amount:        decimal.RequireFromString("125.50"),
			PaymentMethod: "Credit Card",
		}
	}

	BeforeEach(func() {
		mockRepo = newMockExpenseRepository()
		syncer = &mockCardSyncer{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		expenseService = expense.NewService(mockRepo, syncer, time.UTC, logger)
		ctx = context.Background()
	})

	Describe("CreateExpense", func() {
		It("should create the expense on the given calendar date", func() {
			// Given
			dto := validDTO()

			// When
			result, err := expenseService.CreateExpense(ctx, 1, dto)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.Date).To(Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
			Expect(result.Amount.String()).To(Equal("125.5"))
			Expect(syncer.recomputed).To(BeEmpty())
		})

		It("should recompute the linked card", func() {
			dto := validDTO()
			dto.CreditCardID = card(10)

			_, err := expenseService.CreateExpense(ctx, 1, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(syncer.recomputed).To(Equal([]int64{10}))
		})

		It("should reject a card owned by someone else", func() {
			dto := validDTO()
			dto.CreditCardID = card(30)

			_, err := expenseService.CreateExpense(ctx, 1, dto)

			Expect(err).To(MatchError(errors.ErrCreditCardNotFound))
			Expect(mockRepo.expenses).To(BeEmpty())
		})

		DescribeTable("should reject invalid input before writing",
			func(mutate func(*expense.CreateExpenseDTO)) {
				dto := validDTO()
				mutate(&dto)

				_, err := expenseService.CreateExpense(ctx, 1, dto)

				Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
				Expect(mockRepo.expenses).To(BeEmpty())
			},
			Entry("zero amount", func(d *expense.CreateExpenseDTO) { d.Amount = decimal.Zero }),
			Entry("negative amount", func(d *expense.CreateExpenseDTO) { d.Amount = decimal.NewFromInt(-5) }),
			Entry("empty description", func(d *expense.CreateExpenseDTO) { d.Description = "  " }),
			Entry("missing category", func(d *expense.CreateExpenseDTO) { d.Category = "" }),
			Entry("missing payment method", func(d *expense.CreateExpenseDTO) { d.PaymentMethod = "" }),
			Entry("malformed date", func(d *expense.CreateExpenseDTO) { d.Date = "15/01/2026" }),
		)
	})

	Describe("UpdateExpense", func() {
		It("should recompute both cards when the expense moves", func() {
			dto := validDTO()
			dto.CreditCardID = card(10)
			created, err := expenseService.CreateExpense(ctx, 1, dto)
			Expect(err).ToNot(HaveOccurred())
			syncer.recomputed = nil

			amount := decimal.NewFromInt(200)
			updated, err := expenseService.UpdateExpense(ctx, 1, created.ID, expense.UpdateExpenseDTO{
				Amount:       &amount,
				CreditCardID: card(20),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Amount.Equal(amount)).To(BeTrue())
			Expect(syncer.recomputed).To(Equal([]int64{10, 20}))
		})

		It("should unlink the card on request", func() {
			dto := validDTO()
			dto.CreditCardID = card(10)
			created, err := expenseService.CreateExpense(ctx, 1, dto)
			Expect(err).ToNot(HaveOccurred())

			updated, err := expenseService.UpdateExpense(ctx, 1, created.ID, expense.UpdateExpenseDTO{ClearCreditCard: true})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.CreditCardID).To(BeNil())
		})

		It("should return not found for another user's expense", func() {
			created, err := expenseService.CreateExpense(ctx, 1, validDTO())
			Expect(err).ToNot(HaveOccurred())
			desc := "hijack"

			_, err = expenseService.UpdateExpense(ctx, 2, created.ID, expense.UpdateExpenseDTO{Description: &desc})

			Expect(err).To(MatchError(errors.ErrExpenseNotFound))
		})
	})

	Describe("DeleteExpense", func() {
		It("should recompute the card the expense was on", func() {
			dto := validDTO()
			dto.CreditCardID = card(20)
			created, err := expenseService.CreateExpense(ctx, 1, dto)
			Expect(err).ToNot(HaveOccurred())
			syncer.recomputed = nil

			Expect(expenseService.DeleteExpense(ctx, 1, created.ID)).To(Succeed())
			Expect(syncer.recomputed).To(Equal([]int64{20}))
		})
	})

	Describe("BulkDeleteExpenses", func() {
		It("should report the deleted count and recompute each card once", func() {
			for i := 0; i < 3; i++ {
				dto := validDTO()
				dto.CreditCardID = card(10)
				_, err := expenseService.CreateExpense(ctx, 1, dto)
				Expect(err).ToNot(HaveOccurred())
			}
			syncer.recomputed = nil

			result, err := expenseService.BulkDeleteExpenses(ctx, 1, expense.BulkDeleteDTO{ExpenseIDs: []int64{1, 2, 3, 99}})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.DeletedCount).To(Equal(int64(3)))
			Expect(syncer.recomputed).To(Equal([]int64{10}))
		})

		It("should reject an empty id list", func() {
			_, err := expenseService.BulkDeleteExpenses(ctx, 1, expense.BulkDeleteDTO{})
			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("ListExpenses", func() {
		It("should normalize the query and compute the summary", func() {
			_, err := expenseService.CreateExpense(ctx, 1, validDTO())
			Expect(err).ToNot(HaveOccurred())
			older := validDTO()
			older.Date = "2025-12-01"
			older.Amount = decimal.NewFromInt(100)
			_, err = expenseService.CreateExpense(ctx, 1, older)
			Expect(err).ToNot(HaveOccurred())

			now := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
			resp, err := expenseService.ListExpenses(ctx, 1, expense.ListQuery{Limit: 500, Category: "all", SortBy: "bogus"}, now)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.listQuery.Limit).To(Equal(expense.MaxPageLimit))
			Expect(mockRepo.listQuery.Category).To(BeEmpty())
			Expect(mockRepo.listQuery.SortBy).To(Equal("date"))
			Expect(resp.Pagination.TotalPages).To(Equal(int64(1)))
			Expect(resp.Summary.TotalExpenses.String()).To(Equal("225.5"))
			Expect(resp.Summary.ThisMonth.String()).To(Equal("125.5"))
			Expect(resp.Summary.AverageDaily.String()).To(Equal("6.28"))
		})
	})

	Describe("ExportExpenses", func() {
		It("should render a workbook with a header row and one row per expense", func() {
			_, err := expenseService.CreateExpense(ctx, 1, validDTO())
			Expect(err).ToNot(HaveOccurred())

			window := period.ResolvePeriod(period.ThisMonth, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
			items, err := expenseService.ExportExpenses(ctx, 1, window)
			Expect(err).ToNot(HaveOccurred())

			var buf bytes.Buffer
			Expect(expense.WriteWorkbook(&buf, items)).To(Succeed())

			f, err := excelize.OpenReader(&buf)
			Expect(err).ToNot(HaveOccurred())
			rows, err := f.GetRows("Expenses")
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0][0]).To(Equal("Date"))
			Expect(rows[1][1]).To(Equal("Weekly groceries"))
			Expect(rows[1][6]).To(Equal("manual"))
		})
	})
})

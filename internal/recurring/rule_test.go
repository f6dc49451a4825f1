package recurring_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/fintrack/internal/recurring"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	return &t
}

var _ = Describe("RuleKind", func() {
	loan := recurring.Rule{
		Type:       recurring.TypeLoan,
		ID:         1,
		Name:       "Car",
		Amount:     decimal.NewFromInt(500),
		DayOfMonth: 1,
		StartDate:  day(2025, 1, 1),
		EndDate:    datePtr(day(2026, 12, 31)),
		Status:     recurring.StatusActive,
	}
	sip := recurring.Rule{
		Type:       recurring.TypeSIP,
		ID:         2,
		Name:       "Retirement",
		FundName:   "Index Fund",
		Amount:     decimal.NewFromInt(200),
		DayOfMonth: 10,
		StartDate:  day(2025, 1, 10),
		Status:     recurring.StatusActive,
	}

	Describe("loans", func() {
		kind, _ := recurring.KindOf(recurring.TypeLoan)

		DescribeTable("due predicate",
			func(mutate func(*recurring.Rule), now time.Time, expected bool) {
				r := loan
				mutate(&r)
				Expect(kind.IsDue(r, now)).To(Equal(expected))
			},
			Entry("matching day before the end", func(*recurring.Rule) {}, at(2026, 1, 1, 9), true),
			Entry("on the last day", func(r *recurring.Rule) { r.DayOfMonth = 31 }, at(2026, 12, 31, 23), true),
			Entry("after the end", func(*recurring.Rule) {}, at(2027, 1, 1, 9), false),
			Entry("different day", func(*recurring.Rule) {}, at(2026, 1, 2, 9), false),
			Entry("paused", func(r *recurring.Rule) { r.Status = "paused" }, at(2026, 1, 1, 9), false),
		)

		It("describes the booking", func() {
			Expect(kind.Category()).To(Equal("Loan EMI"))
			Expect(kind.Description(loan)).To(Equal("EMI - Car"))
			Expect(kind.Notes("2026-01")).To(Equal("Auto-generated EMI payment for 2026-01"))
		})
	})

	Describe("SIPs", func() {
		kind, _ := recurring.KindOf(recurring.TypeSIP)

		It("stays due every month when there is no end date", func() {
			for _, now := range []time.Time{at(2025, 1, 10, 8), at(2026, 7, 10, 8), at(2040, 3, 10, 8)} {
				Expect(kind.IsDue(sip, now)).To(BeTrue(), now.String())
			}
		})

		It("is not due before it starts", func() {
			Expect(kind.IsDue(sip, at(2024, 12, 10, 8))).To(BeFalse())
		})

		It("stops after its end date", func() {
			r := sip
			r.EndDate = datePtr(day(2025, 6, 10))
			Expect(kind.IsDue(r, at(2025, 6, 10, 20))).To(BeTrue())
			Expect(kind.IsDue(r, at(2025, 7, 10, 8))).To(BeFalse())
		})

		It("includes the fund in the description", func() {
			Expect(kind.Category()).To(Equal("Investment"))
			Expect(kind.Description(sip)).To(Equal("SIP - Retirement (Index Fund)"))
			Expect(kind.Notes("2025-03")).To(Equal("Auto-generated SIP payment for 2025-03"))
		})
	})

	It("rejects unknown rule types", func() {
		_, err := recurring.KindOf("bond")
		Expect(err).To(HaveOccurred())
	})

	It("dates obligations on the rule's day of the current month", func() {
		kind, _ := recurring.KindOf(recurring.TypeLoan)
		o := recurring.NewObligation(kind, loan, at(2026, 1, 1, 9))

		Expect(o.Date).To(Equal(day(2026, 1, 1)))
		Expect(o.Period).To(Equal("2026-01"))
		Expect(o.Amount.String()).To(Equal("500"))
		Expect(o.RuleType).To(Equal(recurring.TypeLoan))
	})
})

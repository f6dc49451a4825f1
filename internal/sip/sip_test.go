package sip_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/fintrack/internal/sip"
)

var _ = Describe("SIP", func() {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	DescribeTable("MonthsInvested",
		func(start time.Time, end *time.Time, now time.Time, expected int) {
			p := &sip.SIP{StartDate: start, EndDate: end, SIPAmount: decimal.NewFromInt(100)}
			Expect(p.MonthsInvested(now)).To(Equal(expected))
		},
		Entry("open ended counts through the current month", date(2025, 1, 10), nil, date(2025, 6, 1), 6),
		Entry("ended plans stop at the end month", date(2025, 1, 10), ptr(date(2025, 3, 10)), date(2025, 12, 1), 3),
		Entry("future end is capped at now", date(2025, 1, 10), ptr(date(2030, 1, 10)), date(2025, 2, 1), 2),
		Entry("not started yet", date(2026, 1, 10), nil, date(2025, 12, 1), 0),
	)

	It("multiplies the amount by months invested", func() {
		p := &sip.SIP{StartDate: date(2025, 1, 1), SIPAmount: decimal.NewFromInt(250)}
		Expect(p.Invested(date(2025, 4, 15)).String()).To(Equal("1000"))
	})
})

func ptr(t time.Time) *time.Time {
	return &t
}

package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/fintrack/internal/core/common/money"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

type categoryTotal struct {
	name   string
	amount decimal.Decimal
	count  int
}

func total(expenses []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// byCategory sums expenses per category, largest first and by name on ties.
func byCategory(expenses []Expense) []categoryTotal {
	index := make(map[string]int)
	var totals []categoryTotal
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, categoryTotal{name: e.Category})
		}
		totals[i].amount = totals[i].amount.Add(e.Amount)
		totals[i].count++
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].amount.Cmp(totals[j].amount); c != 0 {
			return c > 0
		}
		return totals[i].name < totals[j].name
	})
	return totals
}

func categoryMap(expenses []Expense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		out[e.Category] = out[e.Category].Add(e.Amount)
	}
	return out
}

func weekdayTotals(expenses []Expense) map[time.Weekday]decimal.Decimal {
	out := make(map[time.Weekday]decimal.Decimal, 7)
	for _, e := range expenses {
		d := e.Date.Weekday()
		out[d] = out[d].Add(e.Amount)
	}
	return out
}

// highestDay walks Monday..Sunday and keeps the first strictly larger sum.
func highestDay(sums map[time.Weekday]decimal.Decimal) time.Weekday {
	best, bestAmount := time.Monday, decimal.Zero
	for _, d := range weekOrder {
		if sums[d].GreaterThan(bestAmount) {
			best, bestAmount = d, sums[d]
		}
	}
	return best
}

// mostUsedPayment counts transactions per method. The default method is the
// seed, so it wins any tie with the leader.
func mostUsedPayment(expenses []Expense) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, e := range expenses {
		if _, ok := counts[e.PaymentMethod]; !ok {
			order = append(order, e.PaymentMethod)
		}
		counts[e.PaymentMethod]++
	}

	best, bestCount := defaultPaymentMethod, 0
	for _, m := range order {
		if m == defaultPaymentMethod {
			continue
		}
		if counts[m] > bestCount && counts[m] > counts[defaultPaymentMethod] {
			best, bestCount = m, counts[m]
		}
	}
	if best == defaultPaymentMethod {
		bestCount = counts[defaultPaymentMethod]
	}
	return best, bestCount
}

func trendOf(current, previous decimal.Decimal) (string, float64) {
	value := money.Change(current, previous)
	switch current.Cmp(previous) {
	case 1:
		return TrendUp, value
	case -1:
		return TrendDown, value
	default:
		return TrendFlat, value
	}
}

func shares(current, previous []Expense) []CategoryShare {
	sum := total(current)
	prev := categoryMap(previous)

	out := make([]CategoryShare, 0)
	for _, c := range byCategory(current) {
		trend, value := trendOf(c.amount, prev[c.name])
		out = append(out, CategoryShare{
			Category:   c.name,
			Amount:     c.amount,
			Percentage: money.Percent(c.amount, sum),
			Trend:      trend,
			TrendValue: value,
			Color:      CategoryColor(c.name),
		})
	}
	return out
}

func viewOf(e Expense) ExpenseView {
	return ExpenseView{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        e.Amount,
		Date:          e.Date.Format(period.DateLayout),
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
	}
}

// topExpenses ranks by amount, newest first on ties.
func topExpenses(expenses []Expense, limit int) []ExpenseView {
	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Amount.Cmp(sorted[j].Amount); c != 0 {
			return c > 0
		}
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]ExpenseView, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, viewOf(e))
	}
	return out
}

// merchantOf is the first whitespace-delimited token of a description.
func merchantOf(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func topMerchants(expenses []Expense, limit int) []Merchant {
	index := make(map[string]int)
	var merchants []Merchant
	for _, e := range expenses {
		name := merchantOf(e.Description)
		i, ok := index[name]
		if !ok {
			i = len(merchants)
			index[name] = i
			merchants = append(merchants, Merchant{Name: name})
		}
		merchants[i].Amount = merchants[i].Amount.Add(e.Amount)
		merchants[i].Count++
	}
	sort.SliceStable(merchants, func(i, j int) bool {
		if c := merchants[i].Amount.Cmp(merchants[j].Amount); c != 0 {
			return c > 0
		}
		return merchants[i].Name < merchants[j].Name
	})
	if len(merchants) > limit {
		merchants = merchants[:limit]
	}
	if merchants == nil {
		merchants = []Merchant{}
	}
	return merchants
}

func dayBreakdown(expenses []Expense) DayBreakdown {
	sums := weekdayTotals(expenses)
	return DayBreakdown{
		Monday:    sums[time.Monday],
		Tuesday:   sums[time.Tuesday],
		Wednesday: sums[time.Wednesday],
		Thursday:  sums[time.Thursday],
		Friday:    sums[time.Friday],
		Saturday:  sums[time.Saturday],
		Sunday:    sums[time.Sunday],
	}
}

func groupByCategory(expenses []Expense) map[string][]Expense {
	out := make(map[string][]Expense)
	for _, e := range expenses {
		out[e.Category] = append(out[e.Category], e)
	}
	return out
}

// bucketStart maps a date onto the first day of its series bucket.
func bucketStart(t time.Time, granularity string) time.Time {
	day := period.StartOfDay(t)
	switch granularity {
	case GranularityWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

func bucketDays(start time.Time, granularity string) int {
	switch granularity {
	case GranularityWeekly:
		return 7
	case GranularityMonthly:
		return period.DaysIn(start.Year(), start.Month(), start.Location())
	default:
		return 1
	}
}

// series emits one point per bucket that has expenses, oldest first.
func series(expenses []Expense, granularity string, budget decimal.Decimal) []TrendPoint {
	sums := make(map[time.Time]decimal.Decimal)
	var keys []time.Time
	for _, e := range expenses {
		k := bucketStart(e.Date, granularity)
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		sums[k] = sums[k].Add(e.Amount)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	daily := budget.Div(decimal.NewFromInt(30))
	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, TrendPoint{
			Date:     k.Format(period.DateLayout),
			Expenses: sums[k],
			Income:   money.Round2(daily.Mul(decimal.NewFromInt(int64(bucketDays(k, granularity))))),
		})
	}
	return out
}

// patterns groups by exact description, keeping groups seen at least twice,
// in order of their first occurrence.
func patterns(expenses []Expense, limit int) []Pattern {
	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	type group struct {
		latest Expense
		count  int
	}
	groups := make(map[string]*group)
	var order []string
	for _, e := range sorted {
		g, ok := groups[e.Description]
		if !ok {
			g = &group{}
			groups[e.Description] = g
			order = append(order, e.Description)
		}
		g.latest = e
		g.count++
	}

	out := make([]Pattern, 0)
	for _, desc := range order {
		g := groups[desc]
		if g.count < 2 {
			continue
		}
		out = append(out, Pattern{
			Type:        "recurring",
			Description: desc,
			Amount:      g.latest.Amount,
			Frequency:   "monthly",
			Occurrences: g.count,
			NextDate:    g.latest.Date.Add(patternInterval).Format(period.DateLayout),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

func categoryAmounts(expenses []Expense) []CategoryAmount {
	out := make([]CategoryAmount, 0)
	for _, c := range byCategory(expenses) {
		out = append(out, CategoryAmount{Category: c.name, Amount: c.amount})
	}
	return out
}

// categoryMovement compares every category of either period against an
// implicit zero in the other one.
func categoryMovement(first, second []Expense) (increased, decreased []string) {
	a, b := categoryMap(first), categoryMap(second)
	names := make(map[string]struct{}, len(a)+len(b))
	for n := range a {
		names[n] = struct{}{}
	}
	for n := range b {
		names[n] = struct{}{}
	}

	increased, decreased = []string{}, []string{}
	for n := range names {
		switch a[n].Cmp(b[n]) {
		case 1:
			increased = append(increased, n)
		case -1:
			decreased = append(decreased, n)
		}
	}
	sort.Strings(increased)
	sort.Strings(decreased)
	return increased, decreased
}

func reportWindow(token, label string, w period.Window) ReportWindow {
	return ReportWindow{
		TimeRange: token,
		Label:     label,
		StartDate: w.Start.Format(period.DateLayout),
		EndDate:   w.End.Format(period.DateLayout),
	}
}

package creditcard

import (
	"time"

	"github.com/frahmantamala/fintrack/internal/core/common/money"
	creditcardDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

// CreditCard keeps CurrentBalance equal to BalanceAdjustment plus the sum of
// linked expenses. Only the repository recompute writes CurrentBalance.
type CreditCard struct {
	ID                  int64           `json:"id"`
	UserID              int64           `json:"userId"`
	Name                string          `json:"name"`
	LastFourDigits      string          `json:"lastFourDigits"`
	Issuer              string          `json:"issuer"`
	BillingCycle        int             `json:"billingCycle"`
	DueDate             int             `json:"dueDate"`
	CreditLimit         decimal.Decimal `json:"creditLimit"`
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	BalanceAdjustment   decimal.Decimal `json:"balanceAdjustment"`
	PreviousOutstanding decimal.Decimal `json:"previousOutstanding"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

type Schedule struct {
	NextBillingDate time.Time `json:"nextBillingDate"`
	NextDueDate     time.Time `json:"nextDueDate"`
	DaysUntilDue    int       `json:"daysUntilDue"`
}

func (c *CreditCard) Utilization() float64 {
	return money.Percent(c.CurrentBalance, c.CreditLimit)
}

func (c *CreditCard) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentBalance)
}

// ScheduleAt computes the next statement and payment dates seen from now.
// Billing falls on BillingCycle this month when it is still ahead, otherwise
// next month; the day is clamped to the month length.
func (c *CreditCard) ScheduleAt(now time.Time) Schedule {
	today := period.StartOfDay(now)
	billing := period.DateInMonth(today, c.BillingCycle)
	if !today.Before(billing) {
		billing = period.DateInMonth(period.AddMonths(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), 1), c.BillingCycle)
	}
	due := billing.AddDate(0, 0, c.DueDate)
	return Schedule{
		NextBillingDate: billing,
		NextDueDate:     due,
		DaysUntilDue:    int(due.Sub(today).Hours() / 24),
	}
}

func ToDataModel(c *CreditCard) *creditcardDatamodel.CreditCard {
	return &creditcardDatamodel.CreditCard{
		ID:                  c.ID,
		UserID:              c.UserID,
		Name:                c.Name,
		LastFourDigits:      c.LastFourDigits,
		Issuer:              c.Issuer,
		BillingCycle:        c.BillingCycle,
		DueDate:             c.DueDate,
		CreditLimit:         c.CreditLimit,
		CurrentBalance:      c.CurrentBalance,
		BalanceAdjustment:   c.BalanceAdjustment,
		PreviousOutstanding: c.PreviousOutstanding,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func FromDataModel(c *creditcardDatamodel.CreditCard) *CreditCard {
	return &CreditCard{
		ID:                  c.ID,
		UserID:              c.UserID,
		Name:                c.Name,
		LastFourDigits:      c.LastFourDigits,
		Issuer:              c.Issuer,
		BillingCycle:        c.BillingCycle,
		DueDate:             c.DueDate,
		CreditLimit:         c.CreditLimit,
		CurrentBalance:      c.CurrentBalance,
		BalanceAdjustment:   c.BalanceAdjustment,
		PreviousOutstanding: c.PreviousOutstanding,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func FromDataModelSlice(cards []*creditcardDatamodel.CreditCard) []*CreditCard {
	result := make([]*CreditCard, len(cards))
	for i, c := range cards {
		result[i] = FromDataModel(c)
	}
	return result
}

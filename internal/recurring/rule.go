// Package recurring turns loan EMIs and SIP installments into ledger expenses
// once per calendar month.
package recurring

import (
	"fmt"
	"time"

	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/shopspring/decimal"
)

const (
	TypeLoan = "loan"
	TypeSIP  = "sip"

	StatusActive = "active"
)

// Rule is the common view of a loan or SIP that the evaluator works on.
type Rule struct {
	Type          string
	ID            int64
	UserID        int64
	Name          string
	FundName      string
	Amount        decimal.Decimal
	DayOfMonth    int
	StartDate     time.Time
	EndDate       *time.Time
	PaymentMethod string
	CreditCardID  *int64
	Status        string
}

// DueSet holds the rules that still need an expense for the current month.
type DueSet struct {
	Loans []Rule
	SIPs  []Rule
}

func (d DueSet) All() []Rule {
	out := make([]Rule, 0, len(d.Loans)+len(d.SIPs))
	out = append(out, d.Loans...)
	return append(out, d.SIPs...)
}

func (d DueSet) Len() int {
	return len(d.Loans) + len(d.SIPs)
}

func (d DueSet) Only(ruleType string) DueSet {
	switch ruleType {
	case TypeLoan:
		return DueSet{Loans: d.Loans}
	case TypeSIP:
		return DueSet{SIPs: d.SIPs}
	}
	return DueSet{}
}

type MaterializedResult struct {
	RuleID    int64           `json:"ruleId"`
	RuleType  string          `json:"ruleType"`
	RuleName  string          `json:"ruleName"`
	Amount    decimal.Decimal `json:"amount"`
	ExpenseID int64           `json:"expenseId"`
	Period    string          `json:"period"`
}

// Obligation is the expense a rule produces for one period.
type Obligation struct {
	ExpenseID     int64
	UserID        int64
	RuleType      string
	RuleID        int64
	Period        string
	Date          time.Time
	Description   string
	Category      string
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
	CreditCardID  *int64
}

// RuleKind knows how one rule type is scheduled and booked.
type RuleKind interface {
	Type() string
	Category() string
	Description(r Rule) string
	Notes(periodKey string) string
	IsDue(r Rule, now time.Time) bool
}

var kinds = map[string]RuleKind{
	TypeLoan: loanKind{},
	TypeSIP:  sipKind{},
}

func KindOf(ruleType string) (RuleKind, error) {
	k, ok := kinds[ruleType]
	if !ok {
		return nil, fmt.Errorf("unknown rule type %q", ruleType)
	}
	return k, nil
}

// NewObligation builds the expense for r in the month of now.
func NewObligation(kind RuleKind, r Rule, now time.Time) *Obligation {
	key := period.MonthKey(now)
	return &Obligation{
		UserID:        r.UserID,
		RuleType:      kind.Type(),
		RuleID:        r.ID,
		Period:        key,
		Date:          period.DateInMonth(now, r.DayOfMonth),
		Description:   kind.Description(r),
		Category:      kind.Category(),
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		Notes:         kind.Notes(key),
		CreditCardID:  r.CreditCardID,
	}
}

type loanKind struct{}

func (loanKind) Type() string     { return TypeLoan }
func (loanKind) Category() string { return "Loan EMI" }

func (loanKind) Description(r Rule) string {
	return "EMI - " + r.Name
}

func (loanKind) Notes(periodKey string) string {
	return "Auto-generated EMI payment for " + periodKey
}

// IsDue: active, installment day is today and the loan has not ended.
func (loanKind) IsDue(r Rule, now time.Time) bool {
	if r.Status != StatusActive || r.DayOfMonth != now.Day() {
		return false
	}
	return r.EndDate == nil || !afterDay(now, *r.EndDate)
}

type sipKind struct{}

func (sipKind) Type() string     { return TypeSIP }
func (sipKind) Category() string { return "Investment" }

func (sipKind) Description(r Rule) string {
	return fmt.Sprintf("SIP - %s (%s)", r.Name, r.FundName)
}

func (sipKind) Notes(periodKey string) string {
	return "Auto-generated SIP payment for " + periodKey
}

// IsDue: active, installment day is today, started, and open ended or not yet ended.
func (sipKind) IsDue(r Rule, now time.Time) bool {
	if r.Status != StatusActive || r.DayOfMonth != now.Day() {
		return false
	}
	if afterDay(r.StartDate, now) {
		return false
	}
	return r.EndDate == nil || !afterDay(now, *r.EndDate)
}

// afterDay reports whether a falls on a later calendar day than b. Each value
// is read in its own location since stored dates carry no zone.
func afterDay(a, b time.Time) bool {
	return dayNumber(a) > dayNumber(b)
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

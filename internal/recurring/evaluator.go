package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/fintrack/internal/period"
)

type RuleRepository interface {
	// FindActiveLoans returns the user's active loans whose EMI day is day.
	FindActiveLoans(ctx context.Context, userID int64, day int) ([]Rule, error)
	// FindActiveSIPs returns the user's active SIPs whose installment day is day.
	FindActiveSIPs(ctx context.Context, userID int64, day int) ([]Rule, error)
	// UsersWithDueRules lists users owning an active loan or SIP on day.
	UsersWithDueRules(ctx context.Context, day int) ([]int64, error)
}

type LedgerRepository interface {
	HasMaterialized(ctx context.Context, userID int64, ruleType string, ruleID int64, periodKey string) (bool, error)
	// CreateMaterialized inserts the expense and sets ExpenseID. It returns
	// errors.ErrAlreadyMaterialized when the period is already booked.
	CreateMaterialized(ctx context.Context, o *Obligation) error
}

type Evaluator struct {
	rules  RuleRepository
	ledger LedgerRepository
	logger *slog.Logger
}

func NewEvaluator(rules RuleRepository, ledger LedgerRepository, logger *slog.Logger) *Evaluator {
	return &Evaluator{rules: rules, ledger: ledger, logger: logger}
}

// DueRules returns the rules due on now that have no expense for now's month yet.
func (e *Evaluator) DueRules(ctx context.Context, userID int64, now time.Time) (DueSet, error) {
	loans, err := e.rules.FindActiveLoans(ctx, userID, now.Day())
	if err != nil {
		return DueSet{}, fmt.Errorf("find active loans: %w", err)
	}
	sips, err := e.rules.FindActiveSIPs(ctx, userID, now.Day())
	if err != nil {
		return DueSet{}, fmt.Errorf("find active sips: %w", err)
	}

	var due DueSet
	if due.Loans, err = e.pending(ctx, userID, TypeLoan, loans, now); err != nil {
		return DueSet{}, err
	}
	if due.SIPs, err = e.pending(ctx, userID, TypeSIP, sips, now); err != nil {
		return DueSet{}, err
	}
	return due, nil
}

func (e *Evaluator) pending(ctx context.Context, userID int64, ruleType string, candidates []Rule, now time.Time) ([]Rule, error) {
	kind, err := KindOf(ruleType)
	if err != nil {
		return nil, err
	}

	key := period.MonthKey(now)
	var out []Rule
	for _, r := range candidates {
		if !kind.IsDue(r, now) {
			continue
		}
		done, err := e.ledger.HasMaterialized(ctx, userID, ruleType, r.ID, key)
		if err != nil {
			return nil, fmt.Errorf("check %s %d for %s: %w", ruleType, r.ID, key, err)
		}
		if done {
			e.logger.Debug("rule already materialized", "rule_type", ruleType, "rule_id", r.ID, "period", key)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// IsMaterialized is the check the materializer repeats right before each write.
func (e *Evaluator) IsMaterialized(ctx context.Context, r Rule, now time.Time) (bool, error) {
	return e.ledger.HasMaterialized(ctx, r.UserID, r.Type, r.ID, period.MonthKey(now))
}

package recurring

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/core/events"
	"github.com/shopspring/decimal"
)

// CardBalanceSyncer is satisfied by the credit card service.
type CardBalanceSyncer interface {
	RecomputeBalance(ctx context.Context, cardID int64) (decimal.Decimal, error)
}

const (
	TriggerLogin    = "login"
	TriggerExplicit = "explicit"
	TriggerWorker   = "worker"
)

type Options struct {
	// Trigger names the caller for logs and events.
	Trigger string
}

type Materializer struct {
	evaluator *Evaluator
	ledger    LedgerRepository
	cards     CardBalanceSyncer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewMaterializer(evaluator *Evaluator, ledger LedgerRepository, cards CardBalanceSyncer, publisher events.Publisher, logger *slog.Logger) *Materializer {
	return &Materializer{
		evaluator: evaluator,
		ledger:    ledger,
		cards:     cards,
		publisher: publisher,
		logger:    logger,
	}
}

// Materialize books one expense per due rule. Rules booked concurrently by
// another caller are skipped. On a store error the results created so far are
// returned with it.
func (m *Materializer) Materialize(ctx context.Context, userID int64, now time.Time, due DueSet, opts Options) ([]MaterializedResult, error) {
	results := make([]MaterializedResult, 0, due.Len())

	for _, r := range due.All() {
		kind, err := KindOf(r.Type)
		if err != nil {
			return results, err
		}
		r.UserID = userID

		done, err := m.evaluator.IsMaterialized(ctx, r, now)
		if err != nil {
			return results, fmt.Errorf("recheck %s %d: %w", r.Type, r.ID, err)
		}
		if done {
			m.logger.Debug("rule materialized concurrently", "rule_type", r.Type, "rule_id", r.ID, "user_id", userID)
			continue
		}

		o := NewObligation(kind, r, now)
		if err := m.ledger.CreateMaterialized(ctx, o); err != nil {
			if stderrors.Is(err, errors.ErrAlreadyMaterialized) {
				m.logger.Debug("lost materialization race", "rule_type", r.Type, "rule_id", r.ID, "period", o.Period)
				continue
			}
			return results, fmt.Errorf("create %s expense for rule %d: %w", r.Type, r.ID, err)
		}

		results = append(results, MaterializedResult{
			RuleID:    r.ID,
			RuleType:  r.Type,
			RuleName:  r.Name,
			Amount:    o.Amount,
			ExpenseID: o.ExpenseID,
			Period:    o.Period,
		})

		m.logger.Info("obligation materialized",
			"user_id", userID,
			"rule_type", r.Type,
			"rule_id", r.ID,
			"expense_id", o.ExpenseID,
			"period", o.Period,
			"trigger", opts.Trigger)

		if o.CreditCardID != nil && m.cards != nil {
			if _, err := m.cards.RecomputeBalance(ctx, *o.CreditCardID); err != nil {
				return results, fmt.Errorf("recompute card %d: %w", *o.CreditCardID, err)
			}
		}

		if m.publisher != nil {
			event := events.NewObligationMaterializedEvent(userID, r.Type, r.ID, o.ExpenseID, o.Amount, o.Period)
			if err := m.publisher.Publish(ctx, event); err != nil {
				m.logger.Warn("failed to publish obligation event", "error", err, "expense_id", o.ExpenseID)
			}
		}
	}

	return results, nil
}

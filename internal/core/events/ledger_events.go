package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeObligationMaterialized = "obligation.materialized"
	EventTypeCardBalanceRecomputed  = "credit_card.balance_recomputed"
)

type ObligationMaterializedEvent struct {
	BaseEvent
	UserID    int64           `json:"user_id"`
	RuleType  string          `json:"rule_type"`
	RuleID    int64           `json:"rule_id"`
	ExpenseID int64           `json:"expense_id"`
	Amount    decimal.Decimal `json:"amount"`
	Period    string          `json:"period"`
}

func NewObligationMaterializedEvent(userID int64, ruleType string, ruleID, expenseID int64, amount decimal.Decimal, period string) *ObligationMaterializedEvent {
	return &ObligationMaterializedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeObligationMaterialized,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"rule_type":  ruleType,
				"rule_id":    ruleID,
				"expense_id": expenseID,
				"amount":     amount.String(),
				"period":     period,
			},
		},
		UserID:    userID,
		RuleType:  ruleType,
		RuleID:    ruleID,
		ExpenseID: expenseID,
		Amount:    amount,
		Period:    period,
	}
}

type CardBalanceRecomputedEvent struct {
	BaseEvent
	CardID  int64           `json:"card_id"`
	Balance decimal.Decimal `json:"balance"`
}

func NewCardBalanceRecomputedEvent(cardID int64, balance decimal.Decimal) *CardBalanceRecomputedEvent {
	return &CardBalanceRecomputedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCardBalanceRecomputed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"card_id": cardID,
				"balance": balance.String(),
			},
		},
		CardID:  cardID,
		Balance: balance,
	}
}

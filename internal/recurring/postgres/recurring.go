package postgres

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errors "github.com/frahmantamala/fintrack/internal"
	expenseDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/expense"
	loanDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/loan"
	sipDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/sip"
	"github.com/frahmantamala/fintrack/internal/recurring"
)

// Repository reads loan and SIP rules and writes materialized expenses.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ recurring.RuleRepository   = (*Repository)(nil)
	_ recurring.LedgerRepository = (*Repository)(nil)
)

func (r *Repository) FindActiveLoans(ctx context.Context, userID int64, day int) ([]recurring.Rule, error) {
	var rows []*loanDatamodel.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND emi_date = ?", userID, recurring.StatusActive, day).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rules := make([]recurring.Rule, len(rows))
	for i, l := range rows {
		end := l.EndDate
		rules[i] = recurring.Rule{
			Type:          recurring.TypeLoan,
			ID:            l.ID,
			UserID:        l.UserID,
			Name:          l.Name,
			Amount:        l.EMIAmount,
			DayOfMonth:    l.EMIDate,
			StartDate:     l.StartDate,
			EndDate:       &end,
			PaymentMethod: l.PaymentMethod,
			CreditCardID:  l.CreditCardID,
			Status:        l.Status,
		}
	}
	return rules, nil
}

func (r *Repository) FindActiveSIPs(ctx context.Context, userID int64, day int) ([]recurring.Rule, error) {
	var rows []*sipDatamodel.SIP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND sip_date = ?", userID, recurring.StatusActive, day).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rules := make([]recurring.Rule, len(rows))
	for i, s := range rows {
		rules[i] = recurring.Rule{
			Type:          recurring.TypeSIP,
			ID:            s.ID,
			UserID:        s.UserID,
			Name:          s.Name,
			FundName:      s.FundName,
			Amount:        s.SIPAmount,
			DayOfMonth:    s.SIPDate,
			StartDate:     s.StartDate,
			EndDate:       s.EndDate,
			PaymentMethod: s.PaymentMethod,
			CreditCardID:  s.CreditCardID,
			Status:        s.Status,
		}
	}
	return rules, nil
}

func (r *Repository) UsersWithDueRules(ctx context.Context, day int) ([]int64, error) {
	var loanUsers, sipUsers []int64
	db := r.db.WithContext(ctx)

	if err := db.Model(&loanDatamodel.Loan{}).
		Where("status = ? AND emi_date = ?", recurring.StatusActive, day).
		Distinct().Pluck("user_id", &loanUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&sipDatamodel.SIP{}).
		Where("status = ? AND sip_date = ?", recurring.StatusActive, day).
		Distinct().Pluck("user_id", &sipUsers).Error; err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(loanUsers)+len(sipUsers))
	users := make([]int64, 0, len(loanUsers)+len(sipUsers))
	for _, id := range append(loanUsers, sipUsers...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

func (r *Repository) HasMaterialized(ctx context.Context, userID int64, ruleType string, ruleID int64, periodKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).
		Where("user_id = ? AND source_rule_type = ? AND source_rule_id = ? AND source_period = ?", userID, ruleType, ruleID, periodKey).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateMaterialized(ctx context.Context, o *recurring.Obligation) error {
	ruleType, ruleID, periodKey, notes := o.RuleType, o.RuleID, o.Period, o.Notes
	row := &expenseDatamodel.Expense{
		UserID:         o.UserID,
		ExpenseDate:    o.Date,
		Description:    o.Description,
		Category:       o.Category,
		Amount:         o.Amount,
		PaymentMethod:  o.PaymentMethod,
		Notes:          &notes,
		CreditCardID:   o.CreditCardID,
		SourceRuleType: &ruleType,
		SourceRuleID:   &ruleID,
		SourcePeriod:   &periodKey,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicate(err) {
			return errors.ErrAlreadyMaterialized
		}
		return err
	}
	o.ExpenseID = row.ID
	return nil
}

func isDuplicate(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}

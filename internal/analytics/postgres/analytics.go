package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/analytics"
	"github.com/frahmantamala/fintrack/internal/period"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const expenseColumns = "id, expense_date, description, category, amount, payment_method"

// Repository is the read model behind the analytics reports. Queries are
// written with ? placeholders and rebound for the driver in use.
type Repository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) analytics.RepositoryAPI {
	return &Repository{db: db}
}

// FindExpenses returns the user's expenses whose date falls on a day of w.
// Dates come back as midnight in the window's location.
func (r *Repository) FindExpenses(ctx context.Context, userID int64, w period.Window, f analytics.Filter) ([]analytics.Expense, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + expenseColumns + " FROM expenses WHERE user_id = ? AND expense_date >= ? AND expense_date < ?")
	args := []interface{}{
		userID,
		w.Start.Format(period.DateLayout),
		period.StartOfDay(w.End).AddDate(0, 0, 1).Format(period.DateLayout),
	}
	if f.Category != "" {
		sb.WriteString(" AND category = ?")
		args = append(args, f.Category)
	}
	if f.PaymentMethod != "" {
		sb.WriteString(" AND payment_method = ?")
		args = append(args, f.PaymentMethod)
	}
	sb.WriteString(" ORDER BY expense_date ASC, id ASC")

	var rows []analytics.Expense
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("find expenses query: %w", err)
	}

	loc := w.Start.Location()
	for i := range rows {
		rows[i].Date = dateIn(rows[i].Date, loc)
	}
	return rows, nil
}

func (r *Repository) RecentExpenses(ctx context.Context, userID int64, limit int) ([]analytics.Expense, error) {
	query := r.db.Rebind("SELECT " + expenseColumns + " FROM expenses WHERE user_id = ? ORDER BY expense_date DESC, id DESC LIMIT ?")

	var rows []analytics.Expense
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent expenses query: %w", err)
	}
	return rows, nil
}

func (r *Repository) TotalSpent(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.GetContext(ctx, &sum, r.db.Rebind("SELECT SUM(amount) FROM expenses WHERE user_id = ?"), userID); err != nil {
		return decimal.Zero, fmt.Errorf("total spent query: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// GetMonthlyBudget reports ok=false when the user has no row for month.
func (r *Repository) GetMonthlyBudget(ctx context.Context, userID int64, month string) (decimal.Decimal, bool, error) {
	var b decimal.Decimal
	err := r.db.GetContext(ctx, &b, r.db.Rebind("SELECT budget FROM monthly_budgets WHERE user_id = ? AND month = ?"), userID, month)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("monthly budget query: %w", err)
	}
	return b, true, nil
}

func (r *Repository) GetDefaultBudget(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var b decimal.NullDecimal
	err := r.db.GetContext(ctx, &b, r.db.Rebind("SELECT monthly_budget FROM users WHERE id = ?"), userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, errors.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("default budget query: %w", err)
	}
	if !b.Valid {
		return decimal.Zero, nil
	}
	return b.Decimal, nil
}

func (r *Repository) AdminCounts(ctx context.Context, monthStart, activeSince time.Time) (*analytics.AdminCounts, error) {
	query := r.db.Rebind(`
SELECT
  (SELECT COUNT(*) FROM users) AS total_users,
  (SELECT COUNT(*) FROM users WHERE created_at < ?) AS users_before_month,
  (SELECT COUNT(*) FROM users WHERE last_login IS NOT NULL AND last_login >= ?) AS active_users,
  (SELECT COUNT(*) FROM expenses) AS total_transactions
`)

	var c analytics.AdminCounts
	if err := r.db.GetContext(ctx, &c, query, monthStart.UTC(), activeSince.UTC()); err != nil {
		return nil, fmt.Errorf("admin counts query: %w", err)
	}
	return &c, nil
}

func (r *Repository) RecentUsers(ctx context.Context, limit int) ([]analytics.UserSummary, error) {
	query := r.db.Rebind("SELECT id, name, email, role, created_at FROM users ORDER BY created_at DESC, id DESC LIMIT ?")

	var users []analytics.UserSummary
	if err := r.db.SelectContext(ctx, &users, query, limit); err != nil {
		return nil, fmt.Errorf("recent users query: %w", err)
	}
	return users, nil
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Package testdb opens the in-memory sqlite database used by repository tests.
package testdb

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/fintrack/internal/core/datamodel/budget"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/category"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/creditcard"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/expense"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/loan"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/sip"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/user"
)

// Models lists every table the service owns, in dependency order.
var Models = []interface{}{
	&user.User{},
	&category.Category{},
	&category.PaymentMethod{},
	&creditcard.CreditCard{},
	&expense.Expense{},
	&loan.Loan{},
	&sip.SIP{},
	&budget.MonthlyBudget{},
}

// Open returns a migrated in-memory database. Every ":memory:" connection is a
// separate database, so the pool is pinned to one connection.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX wraps the same connection for the sqlx read model.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

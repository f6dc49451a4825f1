package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/fintrack/internal/analytics"
	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/core/datamodel/category"
	userModel "github.com/frahmantamala/fintrack/internal/core/datamodel/user"
	"github.com/frahmantamala/fintrack/internal/user"
	"github.com/frahmantamala/fintrack/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedDemoUsers bool
	seedPassword  string
)

// categoryIcons is the reference category list; colors come from the analytics palette.
var categoryIcons = []struct {
	Name string
	Icon string
}{
	{"Food & Dining", "Utensils"},
	{"Transportation", "Car"},
	{"Entertainment", "Film"},
	{"Utilities", "Zap"},
	{"Shopping", "ShoppingBag"},
	{"Healthcare", "Heart"},
	{"Education", "Book"},
	{"Travel", "Plane"},
	{"Subscription", "Repeat"},
	{"Credit Card Repayment", "CreditCard"},
	{"Loan EMI", "TrendingUp"},
	{"Investment", "LineChart"},
	{"Others", "MoreHorizontal"},
}

var paymentMethods = []string{"Cash", "Credit Card", "Debit Card", "UPI", "Net Banking", "Wallet"}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data",
	Long:  `Seed categories and payment methods. With --demo-users also create a demo user and an admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		ctx := context.Background()
		if err := seedReferenceData(ctx, gdb); err != nil {
			return err
		}
		if seedDemoUsers {
			return seedUsers(ctx, gdb, seedPassword, cfg.Security.BCryptCost)
		}
		return nil
	},
}

// seedReferenceData upserts categories and payment methods; running it twice changes nothing.
func seedReferenceData(ctx context.Context, db *gorm.DB) error {
	lg := logger.LoggerWrapper()

	for _, c := range categoryIcons {
		row := category.Category{
			Name:     c.Name,
			Color:    analytics.CategoryColor(c.Name),
			Icon:     c.Icon,
			IsActive: true,
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"color", "icon", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	lg.Info("categories seeded", "count", len(categoryIcons))

	for _, name := range paymentMethods {
		row := category.PaymentMethod{Name: name, IsActive: true}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("seed payment method %s: %w", name, err)
		}
	}
	lg.Info("payment methods seeded", "count", len(paymentMethods))
	return nil
}

func seedUsers(ctx context.Context, db *gorm.DB, password string, cost int) error {
	lg := logger.LoggerWrapper()

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := []userModel.User{
		{Email: "demo@fintrack.local", Name: "Demo User", Role: userModel.RoleUser},
		{Email: "admin@fintrack.local", Name: "Admin", Role: userModel.RoleAdmin},
	}
	for _, u := range users {
		u.PasswordHash = hash
		u.Currency = user.DefaultCurrency
		u.Theme = user.DefaultTheme
		u.MonthlyBudget = decimal.NewFromInt(50000)
		u.EmailNotifications = true
		u.BudgetAlerts = true
		u.BillReminders = true
		u.IsActive = true

		res := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&u)
		if res.Error != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, res.Error)
		}
		if res.RowsAffected == 0 {
			lg.Info("user already exists", "email", u.Email)
			continue
		}
		lg.Info("seeded user", "email", u.Email, "role", u.Role)
	}
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemoUsers, "demo-users", false, "also create a demo user and an admin")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for the seeded users")
}

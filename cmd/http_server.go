package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/fintrack/internal/analytics"
	analyticsRepo "github.com/frahmantamala/fintrack/internal/analytics/postgres"
	"github.com/frahmantamala/fintrack/internal/auth"
	authRepo "github.com/frahmantamala/fintrack/internal/auth/postgres"
	"github.com/frahmantamala/fintrack/internal/budget"
	budgetRepo "github.com/frahmantamala/fintrack/internal/budget/postgres"
	"github.com/frahmantamala/fintrack/internal/category"
	categoryRepo "github.com/frahmantamala/fintrack/internal/category/postgres"
	"github.com/frahmantamala/fintrack/internal/creditcard"
	"github.com/frahmantamala/fintrack/internal/expense"
	expenseRepo "github.com/frahmantamala/fintrack/internal/expense/postgres"
	"github.com/frahmantamala/fintrack/internal/loan"
	loanRepo "github.com/frahmantamala/fintrack/internal/loan/postgres"
	"github.com/frahmantamala/fintrack/internal/recurring"
	"github.com/frahmantamala/fintrack/internal/sip"
	sipRepo "github.com/frahmantamala/fintrack/internal/sip/postgres"
	"github.com/frahmantamala/fintrack/internal/transport"
	"github.com/frahmantamala/fintrack/internal/transport/rest"
	"github.com/frahmantamala/fintrack/internal/transport/swagger"
	"github.com/frahmantamala/fintrack/internal/user"
	userRepo "github.com/frahmantamala/fintrack/internal/user/postgres"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	router := chi.NewRouter()
	handlers := a.handlers()

	spec, err := swagger.Load(swagger.SpecPath)
	if err != nil {
		// The API still serves without docs.
		a.logger.Warn("openapi spec not served", "error", err)
		spec = nil
	}

	rest.RegisterAllRoutes(router, handlers, rest.RouterOptions{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Spec:           spec,
		Logger:         a.logger,
	})

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", "address", addr, "timezone", a.location.String())
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Received signal, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			a.logger.Error("Server failed to start", "error", err)
			a.close()
			os.Exit(1)
		}
	}

	a.logger.Info("Server stopped")
}

// handlers builds the HTTP layer on top of the shared app services.
func (a *app) handlers() rest.Handlers {
	lg := a.logger
	bcryptCost := a.cfg.Security.BCryptCost

	tokens := auth.NewJWTTokenGenerator(
		a.cfg.Security.JWTAccessSecret,
		a.cfg.Security.JWTRefreshSecret,
		a.cfg.Security.AccessTokenDuration,
		a.cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo.NewRepository(a.gorm), tokens, bcryptCost, lg)
	authService.SetLoginHook(a.recurring, a.cfg.Recurring.ProcessOnLogin)

	userService := user.NewService(userRepo.NewUserRepository(a.gorm), bcryptCost, lg)
	categoryService := category.NewService(categoryRepo.NewCategoryRepository(a.gorm), lg)
	expenseService := expense.NewService(expenseRepo.NewExpenseRepository(a.gorm), a.cards, a.location, lg)
	loanService := loan.NewService(loanRepo.NewLoanRepository(a.gorm), a.location, lg)
	sipService := sip.NewService(sipRepo.NewSIPRepository(a.gorm), a.location, lg)
	budgetService := budget.NewService(budgetRepo.NewBudgetRepository(a.gorm), lg)
	analyticsService := analytics.NewService(analyticsRepo.NewAnalyticsRepository(a.db), lg)

	h := rest.Handlers{
		Health:     rest.NewHealthHandler(a.healthComponents()),
		Auth:       auth.NewHandler(authService),
		User:       user.NewHandler(userService),
		Category:   category.NewHandler(transport.NewBaseHandler(lg), categoryService),
		Expense:    expense.NewHandler(expenseService),
		CreditCard: creditcard.NewHandler(a.cards),
		Loan:       loan.NewHandler(loanService),
		SIP:        sip.NewHandler(sipService),
		Budget:     budget.NewHandler(budgetService),
		Recurring:  recurring.NewHandler(a.recurring),
		Analytics:  analytics.NewHandler(analyticsService),
	}

	for _, base := range []*transport.BaseHandler{
		h.Auth.BaseHandler, h.User.BaseHandler, h.Expense.BaseHandler,
		h.CreditCard.BaseHandler, h.Loan.BaseHandler, h.SIP.BaseHandler,
		h.Budget.BaseHandler, h.Recurring.BaseHandler, h.Analytics.BaseHandler,
	} {
		base.SetLocation(a.location)
	}
	return h
}

func (a *app) healthComponents() map[string]rest.Pinger {
	components := map[string]rest.Pinger{"postgres": a.db}
	if a.broker != nil {
		components["rabbitmq"] = a.broker
	}
	return components
}

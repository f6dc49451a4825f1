package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/fintrack/internal/analytics"
	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/budget"
	"github.com/frahmantamala/fintrack/internal/category"
	"github.com/frahmantamala/fintrack/internal/creditcard"
	"github.com/frahmantamala/fintrack/internal/expense"
	"github.com/frahmantamala/fintrack/internal/loan"
	"github.com/frahmantamala/fintrack/internal/recurring"
	"github.com/frahmantamala/fintrack/internal/sip"
	"github.com/frahmantamala/fintrack/internal/transport/middleware"
	"github.com/frahmantamala/fintrack/internal/transport/swagger"
	"github.com/frahmantamala/fintrack/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups every HTTP handler the API mounts. A nil handler leaves its
// routes unregistered.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	User       *user.Handler
	Category   *category.Handler
	Expense    *expense.Handler
	CreditCard *creditcard.Handler
	Loan       *loan.Handler
	SIP        *sip.Handler
	Budget     *budget.Handler
	Recurring  *recurring.Handler
	Analytics  *analytics.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	// Spec is served at /openapi.yml when set.
	Spec   *swagger.Spec
	Logger *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.Spec != nil {
		router.Method(http.MethodGet, "/openapi.yml", opts.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/signup", h.Auth.SignUp)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
				sr.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
			})
		}

		// Reference data is public.
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
			r.Get("/payment-methods", h.Category.GetPaymentMethods)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			registerUserRoutes(pr, h.User)
			registerExpenseRoutes(pr, h.Expense)
			registerCreditCardRoutes(pr, h.CreditCard)
			registerLoanRoutes(pr, h.Loan, h.Recurring)
			registerSIPRoutes(pr, h.SIP, h.Recurring)
			registerBudgetRoutes(pr, h.Budget)

			if h.Recurring != nil {
				pr.Post("/recurring/process", h.Recurring.Process)
			}

			if h.Analytics != nil {
				pr.Route("/analytics", func(ar chi.Router) {
					ar.Get("/overview", h.Analytics.Overview)
					ar.Get("/categories", h.Analytics.Categories)
					ar.Get("/trends", h.Analytics.Trends)
					ar.Get("/compare", h.Analytics.Compare)
				})
				pr.Get("/dashboard/user", h.Analytics.UserDashboard)
				pr.With(h.Auth.RequireRole(auth.RoleAdmin)).Get("/dashboard/admin", h.Analytics.AdminDashboard)
			}
		})
	})
}

func registerUserRoutes(r chi.Router, h *user.Handler) {
	if h == nil {
		return
	}
	r.Route("/users/me", func(ur chi.Router) {
		ur.Get("/", h.GetProfile)
		ur.Patch("/", h.UpdateProfile)
		ur.Patch("/password", h.UpdatePassword)
		ur.Patch("/notifications", h.UpdateNotifications)
		ur.Get("/settings", h.GetSettings)
	})
}

func registerExpenseRoutes(r chi.Router, h *expense.Handler) {
	if h == nil {
		return
	}
	r.Route("/expenses", func(er chi.Router) {
		er.Get("/", h.ListExpenses)
		er.Post("/", h.CreateExpense)
		er.Get("/export", h.ExportExpenses)
		er.Post("/bulk-delete", h.BulkDeleteExpenses)
		er.Get("/{id}", h.GetExpense)
		er.Patch("/{id}", h.UpdateExpense)
		er.Delete("/{id}", h.DeleteExpense)
	})
}

func registerCreditCardRoutes(r chi.Router, h *creditcard.Handler) {
	if h == nil {
		return
	}
	r.Route("/credit-cards", func(cr chi.Router) {
		cr.Get("/", h.ListCards)
		cr.Post("/", h.CreateCard)
		cr.Get("/{id}", h.GetCard)
		cr.Patch("/{id}", h.UpdateCard)
		cr.Delete("/{id}", h.DeleteCard)
		cr.Post("/{id}/link-expense", h.LinkExpense)
	})
}

func registerLoanRoutes(r chi.Router, h *loan.Handler, rec *recurring.Handler) {
	if h == nil {
		return
	}
	r.Route("/loans", func(lr chi.Router) {
		lr.Get("/", h.ListLoans)
		lr.Post("/", h.CreateLoan)
		if rec != nil {
			lr.Post("/process-emis", rec.ProcessEMIs)
		}
		lr.Get("/{id}", h.GetLoan)
		lr.Patch("/{id}", h.UpdateLoan)
		lr.Delete("/{id}", h.DeleteLoan)
	})
}

func registerSIPRoutes(r chi.Router, h *sip.Handler, rec *recurring.Handler) {
	if h == nil {
		return
	}
	r.Route("/sips", func(sr chi.Router) {
		sr.Get("/", h.ListSIPs)
		sr.Post("/", h.CreateSIP)
		if rec != nil {
			sr.Post("/process-sips", rec.ProcessSIPs)
		}
		sr.Get("/{id}", h.GetSIP)
		sr.Patch("/{id}", h.UpdateSIP)
		sr.Delete("/{id}", h.DeleteSIP)
	})
}

func registerBudgetRoutes(r chi.Router, h *budget.Handler) {
	if h == nil {
		return
	}
	r.Route("/budgets", func(br chi.Router) {
		br.Get("/", h.ListBudgets)
		br.Post("/", h.CreateBudget)
		br.Get("/{month}", h.GetBudget)
		br.Patch("/{month}", h.UpdateBudget)
		br.Delete("/{month}", h.DeleteBudget)
	})
}

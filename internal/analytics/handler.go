package analytics

import (
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/transport"
	"github.com/frahmantamala/fintrack/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// Overview serves GET /analytics/overview?timeRange=&category=&paymentMethod=
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	q := r.URL.Query()
	report, err := h.Service.GetOverview(r.Context(), user.ID, q.Get("timeRange"), q.Get("category"), q.Get("paymentMethod"), h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	report, err := h.Service.GetCategoryAnalytics(r.Context(), user.ID, r.URL.Query().Get("timeRange"), h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	q := r.URL.Query()
	report, err := h.Service.GetTrendAnalysis(r.Context(), user.ID, q.Get("timeRange"), q.Get("granularity"), h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// Compare serves GET /analytics/comparison?period1=&period2=
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	q := r.URL.Query()
	report, err := h.Service.GetComparisonAnalytics(r.Context(), user.ID, q.Get("period1"), q.Get("period2"), h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) UserDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	dash, err := h.Service.GetDashboard(r.Context(), user.ID, h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dash)
}

// AdminDashboard is mounted behind the admin role check.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}
	if !user.IsAdmin() {
		h.HandleServiceError(w, errors.ErrInsufficientRole)
		return
	}

	dash, err := h.Service.GetAdminDashboard(r.Context(), h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dash)
}

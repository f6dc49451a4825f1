package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
	"github.com/frahmantamala/fintrack/internal/auth"
	"github.com/frahmantamala/fintrack/internal/transport"
	"github.com/frahmantamala/fintrack/pkg/logger"
)

type ProcessResponse struct {
	Message   string               `json:"message"`
	Processed []MaterializedResult `json:"processed"`
}

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

type processFunc func(ctx context.Context, userID int64, now time.Time) ([]MaterializedResult, error)

// Process materializes every due loan and SIP for the caller.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Service.MaterializeDueObligations, "obligation(s)")
}

func (h *Handler) ProcessEMIs(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Service.ProcessEMIs, "EMI(s)")
}

func (h *Handler) ProcessSIPs(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Service.ProcessSIPs, "SIP(s)")
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, fn processFunc, noun string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, errors.ErrUnauthorizedAccess)
		return
	}

	results, err := fn(r.Context(), user.ID, h.Now(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProcessResponse{
		Message:   fmt.Sprintf("Processed %d %s", len(results), noun),
		Processed: results,
	})
}

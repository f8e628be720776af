package openitems

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/primanota-erp/primanota/internal/accounting/chart"
	"github.com/primanota-erp/primanota/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/aging", h.Aging)
}

// List serves settleable items for a counterparty and role.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	counterpartyID, err := strconv.ParseInt(r.URL.Query().Get("counterparty_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "counterparty_id must be numeric")
		return
	}
	role := chart.Role(r.URL.Query().Get("role"))
	items, err := h.service.FetchOpenItems(r.Context(), counterpartyID, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"open_items": items})
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	bucket, err := h.service.CalculateAging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("calculate aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bucket)
}

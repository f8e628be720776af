package chart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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
	r.Get("/{id}/leaves", h.Leaves)
}

// List serves the flattened chart for account pickers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	flat, err := h.service.FlatChart(r.Context())
	if err != nil {
		h.logger.Error("list chart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": flat})
}

// Leaves serves the sub-accounts under a chart node.
func (h *Handler) Leaves(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "account id must be numeric")
		return
	}
	tree, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.Error("load chart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	leaves, err := tree.LeafDescendants(id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sub_accounts": leaves})
}

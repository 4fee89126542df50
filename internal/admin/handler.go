// Package admin exposes a read-only HTTP view of the removal ledger.
package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"deportbot/internal/ledger"
	"deportbot/pkg/response"
)

// Handler handles HTTP requests for removal records
type Handler struct {
	store  ledger.Store
	logger *zap.Logger
}

// NewHandler creates a new admin handler with store dependency injected
func NewHandler(store ledger.Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Routes returns the router for removal-record endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{user}", h.GetByUser)

	return r
}

// GetByUser handles GET /removals/{user}
// @Summary      Get a removal record
// @Description  Look up which channels a user was removed from
// @Tags         removals
// @Produce      json
// @Param        user path string true "Slack user ID"
// @Success      200 {object} response.APIResponse{data=ledger.RemovalRecord}
// @Failure      404 {object} response.APIResponse
// @Router       /removals/{user} [get]
func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")

	record, err := h.store.Get(r.Context(), user)
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		h.logger.Error("failed to load removal record",
			zap.String("user", user),
			zap.Error(err))
		response.InternalError(w, "Failed to get removal record")
		return
	}

	response.JSON(w, http.StatusOK, record)
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/usecase/system"
	"github.com/complyance/governance/infrastructure/http/response"
)

type SystemHandler struct {
	systemUseCase inbound.SystemUseCase
}

func NewSystemHandler(systemUseCase inbound.SystemUseCase) *SystemHandler {
	return &SystemHandler{systemUseCase: systemUseCase}
}

// Health answers 503 when the store is unreachable.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.systemUseCase.Health(r.Context())
	if health.Status != system.StatusUp {
		response.WriteJSON(w, http.StatusServiceUnavailable, false, "Service unavailable", health)
		return
	}
	response.Success(w, http.StatusOK, "Service healthy", health)
}

func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.systemUseCase.Stats(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "System metrics retrieved successfully", stats)
}

func (h *SystemHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/system/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/system/metrics", h.Stats).Methods(http.MethodGet)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/infrastructure/http/response"
)

type PreferenceHandler struct {
	preferenceUseCase inbound.PreferenceUseCase
}

func NewPreferenceHandler(preferenceUseCase inbound.PreferenceUseCase) *PreferenceHandler {
	return &PreferenceHandler{preferenceUseCase: preferenceUseCase}
}

func (h *PreferenceHandler) UpsertPreferences(w http.ResponseWriter, r *http.Request) {
	var req inbound.UpsertPreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	pref, err := h.preferenceUseCase.UpsertPreferences(r.Context(), mux.Vars(r)["userId"], req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Preferences saved successfully", pref)
}

func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	pref, err := h.preferenceUseCase.GetPreferences(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Preferences retrieved successfully", pref)
}

func (h *PreferenceHandler) SoftDeletePreferences(w http.ResponseWriter, r *http.Request) {
	if err := h.preferenceUseCase.SoftDeletePreferences(r.Context(), mux.Vars(r)["userId"]); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Preferences deleted successfully", nil)
}

func (h *PreferenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{userId}/preferences", h.UpsertPreferences).Methods(http.MethodPut)
	r.HandleFunc("/users/{userId}/preferences", h.GetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/users/{userId}/preferences", h.SoftDeletePreferences).Methods(http.MethodDelete)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/infrastructure/http/middleware"
	"github.com/complyance/governance/infrastructure/http/response"
	"github.com/complyance/governance/infrastructure/http/validator"
)

type UserHandler struct {
	userLifecycleUseCase inbound.UserLifecycleUseCase
}

func NewUserHandler(userLifecycleUseCase inbound.UserLifecycleUseCase) *UserHandler {
	return &UserHandler{userLifecycleUseCase: userLifecycleUseCase}
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userLifecycleUseCase.CreateUser(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", user)
}

// GetUser returns an active user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userLifecycleUseCase.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

// ListUsers returns active users, paged when any paging parameter is given
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := validator.ParseUserPage(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.userLifecycleUseCase.ListUsers(r.Context(), inbound.ListUsersRequest{Page: page})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", resp)
}

// UpdateUser replaces the fields present in the body
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req inbound.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Email != "" && !validator.ValidateEmail(req.Email) {
		response.BadRequest(w, "Invalid email format")
		return
	}

	user, err := h.userLifecycleUseCase.UpdateUser(r.Context(), middleware.ActorFromContext(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", user)
}

// PatchUser applies only the fields that changed
func (h *UserHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	var req inbound.PatchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userLifecycleUseCase.PatchUser(r.Context(), middleware.ActorFromContext(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User patched successfully", user)
}

func (h *UserHandler) SoftDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userLifecycleUseCase.SoftDeleteUser(r.Context(), middleware.ActorFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User soft-deleted successfully", nil)
}

func (h *UserHandler) RestoreUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userLifecycleUseCase.RestoreUser(r.Context(), middleware.ActorFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User restored successfully", user)
}

func (h *UserHandler) PurgeUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userLifecycleUseCase.PurgeUser(r.Context(), middleware.ActorFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "User permanently deleted", nil)
}

func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", h.PatchUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}", h.SoftDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/restore", h.RestoreUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/purge", h.PurgeUser).Methods(http.MethodPost)
}

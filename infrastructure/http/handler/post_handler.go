package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/infrastructure/http/response"
	"github.com/complyance/governance/infrastructure/http/validator"
)

type PostHandler struct {
	postUseCase inbound.PostUseCase
}

func NewPostHandler(postUseCase inbound.PostUseCase) *PostHandler {
	return &PostHandler{postUseCase: postUseCase}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Title) {
		response.BadRequest(w, "Title is required")
		return
	}

	post, err := h.postUseCase.CreatePost(r.Context(), mux.Vars(r)["userId"], req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Post created successfully", post)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := validator.ParsePostPage(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.postUseCase.ListActivePosts(r.Context(), mux.Vars(r)["userId"], inbound.ListPostsRequest{Page: page})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Posts retrieved successfully", resp)
}

func (h *PostHandler) SoftDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.postUseCase.SoftDeletePost(r.Context(), mux.Vars(r)["postId"]); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Post deleted successfully", nil)
}

func (h *PostHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{userId}/posts", h.CreatePost).Methods(http.MethodPost)
	r.HandleFunc("/users/{userId}/posts", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{postId}", h.SoftDeletePost).Methods(http.MethodDelete)
}

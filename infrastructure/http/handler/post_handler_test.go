package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(ctx context.Context, userID string, req inbound.CreatePostRequest) (*entity.Post, error) {
	args := m.Called(ctx, userID, req)
	post, _ := args.Get(0).(*entity.Post)
	return post, args.Error(1)
}

func (m *MockPostUseCase) ListActivePosts(ctx context.Context, userID string, req inbound.ListPostsRequest) (*inbound.ListPostsResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*inbound.ListPostsResponse)
	return resp, args.Error(1)
}

func (m *MockPostUseCase) SoftDeletePost(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}

type MockPreferenceUseCase struct {
	mock.Mock
}

func (m *MockPreferenceUseCase) UpsertPreferences(ctx context.Context, userID string, req inbound.UpsertPreferencesRequest) (*entity.Preference, error) {
	args := m.Called(ctx, userID, req)
	pref, _ := args.Get(0).(*entity.Preference)
	return pref, args.Error(1)
}

func (m *MockPreferenceUseCase) GetPreferences(ctx context.Context, userID string) (*entity.Preference, error) {
	args := m.Called(ctx, userID)
	pref, _ := args.Get(0).(*entity.Preference)
	return pref, args.Error(1)
}

func (m *MockPreferenceUseCase) SoftDeletePreferences(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func postRouter(uc inbound.PostUseCase, pc inbound.PreferenceUseCase) *mux.Router {
	router := mux.NewRouter()
	NewPostHandler(uc).RegisterRoutes(router)
	NewPreferenceHandler(pc).RegisterRoutes(router)
	return router
}

func TestPostHandler_CreatePost(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		requestBody    string
		setup          func(uc *MockPostUseCase)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "successful creation",
			userID:      "u-1",
			requestBody: `{"title":"Hello","content":"World"}`,
			setup: func(uc *MockPostUseCase) {
				uc.On("CreatePost", mock.Anything, "u-1", inbound.CreatePostRequest{Title: "Hello", Content: "World"}).
					Return(&entity.Post{ID: "p-1", UserID: "u-1", Title: "Hello"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			userID:         "u-1",
			requestBody:    `{"title":"  ","content":"World"}`,
			setup:          func(uc *MockPostUseCase) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "owner soft-deleted",
			userID:      "u-2",
			requestBody: `{"title":"Hello"}`,
			setup: func(uc *MockPostUseCase) {
				uc.On("CreatePost", mock.Anything, "u-2", inbound.CreatePostRequest{Title: "Hello"}).
					Return(nil, domainerr.ErrUserSoftDeleted("u-2", "create post"))
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   string(domainerr.ErrCodeUserSoftDeleted),
		},
		{
			name:        "owner missing",
			userID:      "u-3",
			requestBody: `{"title":"Hello"}`,
			setup: func(uc *MockPostUseCase) {
				uc.On("CreatePost", mock.Anything, "u-3", inbound.CreatePostRequest{Title: "Hello"}).
					Return(nil, domainerr.ErrUserNotFound("u-3"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   string(domainerr.ErrCodeUserNotFound),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockPostUseCase)
			tt.setup(uc)

			rec := serve(postRouter(uc, new(MockPreferenceUseCase)), http.MethodPost, "/users/"+tt.userID+"/posts", tt.requestBody, "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, decodeEnvelope(t, rec).Code)
			uc.AssertExpectations(t)
		})
	}
}

func TestPostHandler_ListPosts(t *testing.T) {
	uc := new(MockPostUseCase)
	uc.On("ListActivePosts", mock.Anything, "u-1", inbound.ListPostsRequest{}).
		Return(&inbound.ListPostsResponse{Posts: []*entity.Post{{ID: "p-1"}}}, nil)
	uc.On("ListActivePosts", mock.Anything, "u-1", inbound.ListPostsRequest{
		Page: &outbound.PageQuery{Page: 0, Size: 2, SortBy: "title", Direction: outbound.SortAsc},
	}).Return(&inbound.ListPostsResponse{}, nil)

	router := postRouter(uc, new(MockPreferenceUseCase))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/users/u-1/posts", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/users/u-1/posts?size=2&sort=title,asc", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/users/u-1/posts?size=0", "", "").Code)
	uc.AssertExpectations(t)
}

func TestPostHandler_SoftDeletePost(t *testing.T) {
	uc := new(MockPostUseCase)
	uc.On("SoftDeletePost", mock.Anything, "p-1").Return(nil)
	uc.On("SoftDeletePost", mock.Anything, "p-9").Return(domainerr.ErrPostNotFound("p-9"))

	router := postRouter(uc, new(MockPreferenceUseCase))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/posts/p-1", "", "").Code)
	rec := serve(router, http.MethodDelete, "/posts/p-9", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(domainerr.ErrCodePostNotFound), decodeEnvelope(t, rec).Code)
	uc.AssertExpectations(t)
}

func TestPreferenceHandler(t *testing.T) {
	pc := new(MockPreferenceUseCase)
	pc.On("UpsertPreferences", mock.Anything, "u-1", inbound.UpsertPreferencesRequest{Theme: "dark", Language: "en", NotificationsEnabled: true}).
		Return(&entity.Preference{ID: "pr-1", UserID: "u-1", Theme: "dark"}, nil)
	pc.On("GetPreferences", mock.Anything, "u-1").Return(nil, domainerr.ErrPreferencesDeleted("u-1", "Preferences have been deleted"))
	pc.On("GetPreferences", mock.Anything, "u-2").Return(nil, domainerr.ErrPreferencesNotFound("u-2"))
	pc.On("SoftDeletePreferences", mock.Anything, "u-1").Return(nil)

	router := postRouter(new(MockPostUseCase), pc)

	rec := serve(router, http.MethodPut, "/users/u-1/preferences", `{"theme":"dark","language":"en","notifications_enabled":true}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/users/u-1/preferences", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(domainerr.ErrCodePreferencesDeleted), decodeEnvelope(t, rec).Code)

	rec = serve(router, http.MethodGet, "/users/u-2/preferences", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodDelete, "/users/u-1/preferences", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPut, "/users/u-1/preferences", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pc.AssertExpectations(t)
}

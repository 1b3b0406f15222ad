package inbound

import (
	"context"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

// Create User
type CreateUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	Status   string   `json:"status"`
}

// Update User replaces every field that is present (non-empty).
type UpdateUserRequest struct {
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Status string   `json:"status,omitempty"`
}

// Patch User applies only fields that differ from the stored values.
type PatchUserRequest struct {
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// List Users
type ListUsersRequest struct {
	// Page is nil when the caller wants every active user.
	Page *outbound.PageQuery
}

type ListUsersResponse struct {
	Users      []*entity.User  `json:"users"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type PaginationInfo struct {
	CurrentPage int    `json:"current_page"`
	Size        int    `json:"size"`
	TotalItems  int    `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	Sort        string `json:"sort,omitempty"`
}

// NewPaginationInfo describes page q of a result set holding total items.
func NewPaginationInfo(q outbound.PageQuery, total int) *PaginationInfo {
	info := &PaginationInfo{
		CurrentPage: q.Page,
		Size:        q.Size,
		TotalItems:  total,
		TotalPages:  q.TotalPages(total),
	}
	if q.SortBy != "" {
		info.Sort = q.SortBy + "," + string(q.Direction)
	}
	return info
}

// UserLifecycleUseCase drives a user through Active, SoftDeleted and Purged.
// actorID is recorded verbatim on the audit trail.
type UserLifecycleUseCase interface {
	CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	ListUsers(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error)
	UpdateUser(ctx context.Context, actorID, userID string, req UpdateUserRequest) (*entity.User, error)
	PatchUser(ctx context.Context, actorID, userID string, req PatchUserRequest) (*entity.User, error)
	SoftDeleteUser(ctx context.Context, actorID, userID string) error
	RestoreUser(ctx context.Context, actorID, userID string) (*entity.User, error)
	PurgeUser(ctx context.Context, actorID, userID string) error
}

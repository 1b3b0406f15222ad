package user_lifecycle

import (
	"context"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

type GetUserUseCase struct {
	*lifecycle
}

// Execute hides soft-deleted users.
func (uc *GetUserUseCase) Execute(ctx context.Context, userID string) (*entity.User, error) {
	return uc.findActive(ctx, userID)
}

type ListUsersUseCase struct {
	*lifecycle
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, req inbound.ListUsersRequest) (*inbound.ListUsersResponse, error) {
	users, total, err := uc.Users.FindAllActive(ctx, req.Page)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("list users", err)
	}

	resp := &inbound.ListUsersResponse{Users: users}
	if req.Page != nil {
		resp.Pagination = inbound.NewPaginationInfo(*req.Page, total)
	}
	return resp, nil
}

package user_lifecycle

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

// DefaultStatus is applied when a create request carries no status.
const DefaultStatus = "ACTIVE"

type CreateUserUseCase struct {
	*lifecycle
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, actorID string, req inbound.CreateUserRequest) (*entity.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := validateCreateUserRequest(req); err != nil {
		return nil, err
	}

	exists, err := uc.Users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("check username", err)
	}
	if exists {
		return nil, domainerr.ErrUsernameExists(req.Username)
	}

	exists, err = uc.Users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("check email", err)
	}
	if exists {
		return nil, domainerr.ErrEmailExists(req.Email)
	}

	status := req.Status
	if status == "" {
		status = DefaultStatus
	}

	user := entity.NewUser(uuid.NewString(), req.Username, req.Email, req.Name, req.Roles, status, uc.now())
	entry := uc.recorder.Record(user, entity.ActionCreate, actorID, "User account created")

	if err := uc.save(ctx, user); err != nil {
		return nil, err
	}

	uc.transitioned(ctx, user, entry)
	return user, nil
}

func validateCreateUserRequest(req inbound.CreateUserRequest) error {
	if req.Username == "" {
		return domainerr.ErrMissingField("username")
	}
	if req.Email == "" {
		return domainerr.ErrMissingField("email")
	}
	if !entity.ValidEmail(req.Email) {
		return domainerr.ErrInvalidEmail(req.Email)
	}
	if req.Name == "" {
		return domainerr.ErrMissingField("name")
	}
	if len(req.Roles) == 0 {
		return domainerr.ErrMissingField("roles")
	}
	return validateRoles(req.Roles)
}

// validateRoles rejects role lists holding blank values.
func validateRoles(roles []string) error {
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			return domainerr.ErrInvalidRequest("roles must not contain blank values")
		}
	}
	return nil
}

package user_lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

type UpdateUserUseCase struct {
	*lifecycle
}

// Execute replaces every field present in req. A status change gets its own
// STATUS_UPDATE entry ahead of the UPDATE entry.
func (uc *UpdateUserUseCase) Execute(ctx context.Context, actorID, userID string, req inbound.UpdateUserRequest) (*entity.User, error) {
	if err := validateRoles(req.Roles); err != nil {
		return nil, err
	}

	user, err := uc.findActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		email, err := uc.checkEmail(ctx, user, req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if len(req.Roles) > 0 {
		user.Roles = append([]string(nil), req.Roles...)
	}

	var entries []entity.AuditEntry
	if req.Status != "" && !strings.EqualFold(req.Status, user.Status) {
		user.Status = req.Status
		entries = append(entries, uc.recorder.Record(user, entity.ActionStatusUpdate, actorID,
			fmt.Sprintf("User status changed to %s", req.Status)))
	}

	user.UpdatedAt = uc.now()
	entries = append(entries, uc.recorder.Record(user, entity.ActionUpdate, actorID, "User profile updated"))

	if err := uc.save(ctx, user); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		uc.transitioned(ctx, user, entry)
	}
	return user, nil
}

// checkEmail normalizes email and makes sure no other user holds it.
func (l *lifecycle) checkEmail(ctx context.Context, user *entity.User, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !entity.ValidEmail(email) {
		return "", domainerr.ErrInvalidEmail(email)
	}
	if email == user.Email {
		return email, nil
	}
	exists, err := l.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", domainerr.ErrDatabaseError("check email", err)
	}
	if exists {
		return "", domainerr.ErrEmailExists(email)
	}
	return email, nil
}

type PatchUserUseCase struct {
	*lifecycle
}

// Execute applies only the fields that differ from the stored user and lists
// them in the PATCH_UPDATE detail.
func (uc *PatchUserUseCase) Execute(ctx context.Context, actorID, userID string, req inbound.PatchUserRequest) (*entity.User, error) {
	if err := validateRoles(req.Roles); err != nil {
		return nil, err
	}

	user, err := uc.findActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changed []string

	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		exists, err := uc.Users.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, domainerr.ErrDatabaseError("check username", err)
		}
		if exists {
			return nil, domainerr.ErrUsernameExists(username)
		}
		user.Username = username
		changed = append(changed, "username")
	}
	if name := strings.TrimSpace(req.Name); name != "" && name != user.Name {
		user.Name = name
		changed = append(changed, "name")
	}
	if req.Email != "" && !strings.EqualFold(strings.TrimSpace(req.Email), user.Email) {
		email, err := uc.checkEmail(ctx, user, req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
		changed = append(changed, "email")
	}
	if len(req.Roles) > 0 && !entity.SameRoles(req.Roles, user.Roles) {
		user.Roles = append([]string(nil), req.Roles...)
		changed = append(changed, "roles")
	}
	if req.Status != "" && req.Status != user.Status {
		user.Status = req.Status
		changed = append(changed, "status")
	}

	details := "No fields changed"
	if len(changed) > 0 {
		details = "Updated fields: " + strings.Join(changed, ", ")
	}

	user.UpdatedAt = uc.now()
	entry := uc.recorder.Record(user, entity.ActionPatchUpdate, actorID, details)

	if err := uc.save(ctx, user); err != nil {
		return nil, err
	}

	uc.transitioned(ctx, user, entry)
	return user, nil
}

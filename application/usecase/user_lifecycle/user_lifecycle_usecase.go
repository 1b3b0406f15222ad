package user_lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/application/usecase/audit"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const entityType = "user"

// PostCascader is the part of the post lifecycle a user transition drives.
type PostCascader interface {
	CascadeSoftDelete(ctx context.Context, userID string) (int, error)
	CascadeRestore(ctx context.Context, userID string) (int, error)
	PurgeAllForUser(ctx context.Context, userID string) error
}

// PreferenceCascader is the part of the preference lifecycle a user
// transition drives.
type PreferenceCascader interface {
	CascadeSoftDelete(ctx context.Context, userID string) (bool, error)
	CascadeRestore(ctx context.Context, userID string) (bool, error)
	PurgeForUser(ctx context.Context, userID string) error
}

type Dependencies struct {
	Users       outbound.UserRepository
	Posts       PostCascader
	Preferences PreferenceCascader
	Transactor  outbound.Transactor
	Clock       clock.Clock
	Metrics     outbound.LifecycleMetrics
	Events      outbound.LifecycleEventPublisher
	Logger      logger.Logger
	// GracePeriod is fixed for the lifetime of the process.
	GracePeriod time.Duration
}

// lifecycle carries what every user operation needs.
type lifecycle struct {
	Dependencies
	recorder *audit.Recorder
}

func (l *lifecycle) now() time.Time {
	return l.Clock.Now().UTC()
}

// findActive treats a soft-deleted user as missing.
func (l *lifecycle) findActive(ctx context.Context, userID string) (*entity.User, error) {
	user, err := l.Users.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(userID, "find user", err)
	}
	return user, nil
}

// findAny looks a user up regardless of its deleted flag.
func (l *lifecycle) findAny(ctx context.Context, userID string) (*entity.User, error) {
	user, err := l.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(userID, "find user", err)
	}
	return user, nil
}

func (l *lifecycle) save(ctx context.Context, user *entity.User) error {
	if err := l.Users.Save(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserAlreadyExists) {
			return domainerr.ErrUsernameExists(user.Username)
		}
		return domainerr.ErrDatabaseError("save user", err)
	}
	return nil
}

func (l *lifecycle) transitioned(ctx context.Context, user *entity.User, entry entity.AuditEntry) {
	l.Metrics.ObserveTransition(entityType, entry.Action)
	l.Events.Publish(ctx, outbound.LifecycleEvent{
		EntityType:  entityType,
		EntityID:    user.ID,
		Action:      entry.Action,
		PerformedBy: entry.PerformedBy,
		Details:     entry.Details,
		Timestamp:   entry.Timestamp,
	})
	logger.LogLifecycleEvent(ctx, l.Logger, entityType, entry.Action, user.ID, entry.PerformedBy, map[string]interface{}{
		"details": entry.Details,
	})
}

func (l *lifecycle) cascadeFailed(ctx context.Context, userID, dependent, action string, done int, err error) {
	l.Metrics.ObserveCascadeFailure(dependent, action)
	l.Logger.Error(ctx, "Cascade interrupted", err, map[string]interface{}{
		"user_id":        userID,
		"dependent_type": dependent,
		"action":         action,
		"transitioned":   done,
	})
}

func mapUserErr(userID, operation string, err error) error {
	if errors.Is(err, outbound.ErrUserNotFound) {
		return domainerr.ErrUserNotFound(userID)
	}
	return domainerr.ErrDatabaseError(operation, err)
}

// UserLifecycleUseCaseImpl moves users between Active, SoftDeleted and Purged
// and keeps their posts and preferences in step.
type UserLifecycleUseCaseImpl struct {
	createUserUseCase     *CreateUserUseCase
	getUserUseCase        *GetUserUseCase
	listUsersUseCase      *ListUsersUseCase
	updateUserUseCase     *UpdateUserUseCase
	patchUserUseCase      *PatchUserUseCase
	softDeleteUserUseCase *SoftDeleteUserUseCase
	restoreUserUseCase    *RestoreUserUseCase
	purgeUserUseCase      *PurgeUserUseCase
}

func NewUserLifecycleUseCase(deps Dependencies) inbound.UserLifecycleUseCase {
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.Metrics == nil {
		deps.Metrics = outbound.NoopLifecycleMetrics{}
	}
	if deps.Events == nil {
		deps.Events = outbound.NoopLifecycleEventPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	l := &lifecycle{Dependencies: deps, recorder: audit.NewRecorder(deps.Clock)}

	return &UserLifecycleUseCaseImpl{
		createUserUseCase:     &CreateUserUseCase{l},
		getUserUseCase:        &GetUserUseCase{l},
		listUsersUseCase:      &ListUsersUseCase{l},
		updateUserUseCase:     &UpdateUserUseCase{l},
		patchUserUseCase:      &PatchUserUseCase{l},
		softDeleteUserUseCase: &SoftDeleteUserUseCase{l},
		restoreUserUseCase:    &RestoreUserUseCase{l},
		purgeUserUseCase:      &PurgeUserUseCase{l},
	}
}

func (uc *UserLifecycleUseCaseImpl) CreateUser(ctx context.Context, actorID string, req inbound.CreateUserRequest) (*entity.User, error) {
	return uc.createUserUseCase.Execute(ctx, actorID, req)
}

func (uc *UserLifecycleUseCaseImpl) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	return uc.getUserUseCase.Execute(ctx, userID)
}

func (uc *UserLifecycleUseCaseImpl) ListUsers(ctx context.Context, req inbound.ListUsersRequest) (*inbound.ListUsersResponse, error) {
	return uc.listUsersUseCase.Execute(ctx, req)
}

func (uc *UserLifecycleUseCaseImpl) UpdateUser(ctx context.Context, actorID, userID string, req inbound.UpdateUserRequest) (*entity.User, error) {
	return uc.updateUserUseCase.Execute(ctx, actorID, userID, req)
}

func (uc *UserLifecycleUseCaseImpl) PatchUser(ctx context.Context, actorID, userID string, req inbound.PatchUserRequest) (*entity.User, error) {
	return uc.patchUserUseCase.Execute(ctx, actorID, userID, req)
}

func (uc *UserLifecycleUseCaseImpl) SoftDeleteUser(ctx context.Context, actorID, userID string) error {
	return uc.softDeleteUserUseCase.Execute(ctx, actorID, userID)
}

func (uc *UserLifecycleUseCaseImpl) RestoreUser(ctx context.Context, actorID, userID string) (*entity.User, error) {
	return uc.restoreUserUseCase.Execute(ctx, actorID, userID)
}

func (uc *UserLifecycleUseCaseImpl) PurgeUser(ctx context.Context, actorID, userID string) error {
	return uc.purgeUserUseCase.Execute(ctx, actorID, userID)
}

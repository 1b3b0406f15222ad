package preference

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const entityType = "preference"

// PreferenceUseCaseImpl owns the lifecycle of the single preference record a
// user may have. Cascade methods are meant for the user lifecycle only.
type PreferenceUseCaseImpl struct {
	prefRepo outbound.PreferenceRepository
	userRepo outbound.UserRepository
	clock    clock.Clock
	logger   logger.Logger
}

func NewPreferenceUseCase(
	prefRepo outbound.PreferenceRepository,
	userRepo outbound.UserRepository,
	clk clock.Clock,
	log logger.Logger,
) *PreferenceUseCaseImpl {
	if clk == nil {
		clk = clock.WallClock
	}
	return &PreferenceUseCaseImpl{
		prefRepo: prefRepo,
		userRepo: userRepo,
		clock:    clk,
		logger:   log,
	}
}

var _ inbound.PreferenceUseCase = (*PreferenceUseCaseImpl)(nil)

func (uc *PreferenceUseCaseImpl) UpsertPreferences(ctx context.Context, userID string, req inbound.UpsertPreferencesRequest) (*entity.Preference, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, domainerr.ErrUserNotFound(userID)
		}
		return nil, domainerr.ErrDatabaseError("find user", err)
	}
	if user.Deleted {
		return nil, domainerr.ErrUserSoftDeleted(userID, "update preferences")
	}

	now := uc.clock.Now().UTC()

	pref, err := uc.prefRepo.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, outbound.ErrPreferenceNotFound):
		pref = entity.NewPreference(uuid.NewString(), userID, req.Theme, req.Language, req.NotificationsEnabled, now)
	case err != nil:
		return nil, domainerr.ErrDatabaseError("find preferences", err)
	case pref.Deleted:
		return nil, domainerr.ErrPreferencesDeleted(userID, "Cannot update deleted preferences")
	default:
		pref.Theme = req.Theme
		pref.Language = req.Language
		pref.NotificationsEnabled = req.NotificationsEnabled
		pref.UpdatedAt = now
	}

	if err := uc.prefRepo.Save(ctx, pref); err != nil {
		return nil, domainerr.ErrDatabaseError("save preferences", err)
	}

	uc.logger.Info(ctx, "Preferences saved", map[string]interface{}{
		"user_id":       userID,
		"preference_id": pref.ID,
	})
	return pref, nil
}

func (uc *PreferenceUseCaseImpl) GetPreferences(ctx context.Context, userID string) (*entity.Preference, error) {
	exists, err := uc.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("check user", err)
	}
	if !exists {
		return nil, domainerr.ErrUserNotFound(userID)
	}

	pref, err := uc.findPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref.Deleted {
		return nil, domainerr.ErrPreferencesDeleted(userID, "Preferences have been deleted")
	}
	return pref, nil
}

// SoftDeletePreferences is a no-op for a record already deleted directly. A
// record deleted by the user's cascade is re-marked as deleted directly.
func (uc *PreferenceUseCaseImpl) SoftDeletePreferences(ctx context.Context, userID string) error {
	pref, err := uc.findPreference(ctx, userID)
	if err != nil {
		return err
	}
	if pref.Deleted {
		if !pref.KeepDeleted() {
			return nil
		}
		if err := uc.prefRepo.Save(ctx, pref); err != nil {
			return domainerr.ErrDatabaseError("save preferences", err)
		}
		return nil
	}

	pref.MarkDeleted(uc.clock.Now().UTC(), false)
	if err := uc.prefRepo.Save(ctx, pref); err != nil {
		return domainerr.ErrDatabaseError("save preferences", err)
	}

	logger.LogLifecycleEvent(ctx, uc.logger, entityType, entity.ActionSoftDelete, pref.ID, "", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// CascadeSoftDelete marks the user's active preference record as deleted by
// cascade. It reports whether a record was transitioned.
func (uc *PreferenceUseCaseImpl) CascadeSoftDelete(ctx context.Context, userID string) (bool, error) {
	pref, err := uc.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, outbound.ErrPreferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domainerr.ErrDatabaseError("find preferences", err)
	}
	if pref.Deleted {
		return false, nil
	}

	pref.MarkDeleted(uc.clock.Now().UTC(), true)
	if err := uc.prefRepo.Save(ctx, pref); err != nil {
		return false, domainerr.ErrDatabaseError("save preferences", err)
	}
	return true, nil
}

// CascadeRestore reverses CascadeSoftDelete. Records deleted directly by the
// user stay deleted.
func (uc *PreferenceUseCaseImpl) CascadeRestore(ctx context.Context, userID string) (bool, error) {
	pref, err := uc.prefRepo.FindByUserID(ctx, userID)
	if errors.Is(err, outbound.ErrPreferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, domainerr.ErrDatabaseError("find preferences", err)
	}
	if !pref.Deleted || !pref.DeletedByCascade {
		return false, nil
	}

	pref.ClearDeleted(uc.clock.Now().UTC())
	if err := uc.prefRepo.Save(ctx, pref); err != nil {
		return false, domainerr.ErrDatabaseError("save preferences", err)
	}
	return true, nil
}

func (uc *PreferenceUseCaseImpl) PurgeForUser(ctx context.Context, userID string) error {
	if err := uc.prefRepo.DeleteByUserID(ctx, userID); err != nil {
		return domainerr.ErrDatabaseError("delete preferences", err)
	}
	return nil
}

func (uc *PreferenceUseCaseImpl) findPreference(ctx context.Context, userID string) (*entity.Preference, error) {
	pref, err := uc.prefRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrPreferenceNotFound) {
			return nil, domainerr.ErrPreferencesNotFound(userID)
		}
		return nil, domainerr.ErrDatabaseError("find preferences", err)
	}
	return pref, nil
}

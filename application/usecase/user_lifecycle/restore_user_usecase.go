package user_lifecycle

import (
	"context"

	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

type RestoreUserUseCase struct {
	*lifecycle
}

// Execute reactivates a soft-deleted user while now is strictly before
// deletedAt + grace period. Only dependents removed by the user's own
// cascade come back.
func (uc *RestoreUserUseCase) Execute(ctx context.Context, actorID, userID string) (*entity.User, error) {
	var restored *entity.User

	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := uc.findAny(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Deleted {
			return domainerr.ErrUserNotDeleted(userID, "restore")
		}
		deadline, ok := user.GraceDeadline(uc.GracePeriod)
		if !ok {
			return domainerr.ErrDeletionTimestampMissing(userID)
		}

		now := uc.now()
		if !now.Before(deadline) {
			return domainerr.ErrGracePeriodExpired(userID, deadline)
		}

		user.ClearDeleted(now)
		entry := uc.recorder.Record(user, entity.ActionRestore, actorID, "User restored from soft-deletion")

		posts, err := uc.Posts.CascadeRestore(ctx, userID)
		if err != nil {
			uc.cascadeFailed(ctx, userID, "post", entity.ActionRestore, posts, err)
			return err
		}
		prefs, err := uc.Preferences.CascadeRestore(ctx, userID)
		if err != nil {
			uc.cascadeFailed(ctx, userID, "preference", entity.ActionRestore, 0, err)
			return err
		}

		if err := uc.save(ctx, user); err != nil {
			return err
		}

		uc.transitioned(ctx, user, entry)
		uc.Logger.Info(ctx, "User dependents restored", map[string]interface{}{
			"user_id":              userID,
			"posts_restored":       posts,
			"preferences_restored": prefs,
		})
		restored = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

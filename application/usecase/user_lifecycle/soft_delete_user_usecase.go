package user_lifecycle

import (
	"context"

	"github.com/complyance/governance/domain/entity"
)

type SoftDeleteUserUseCase struct {
	*lifecycle
}

// Execute marks the user deleted, cascades into posts and preferences, then
// saves the user last. An already deleted user is reported as not found.
func (uc *SoftDeleteUserUseCase) Execute(ctx context.Context, actorID, userID string) error {
	return uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := uc.findActive(ctx, userID)
		if err != nil {
			return err
		}

		user.MarkDeleted(uc.now())

		posts, err := uc.Posts.CascadeSoftDelete(ctx, userID)
		if err != nil {
			uc.cascadeFailed(ctx, userID, "post", entity.ActionSoftDelete, posts, err)
			return err
		}
		prefs, err := uc.Preferences.CascadeSoftDelete(ctx, userID)
		if err != nil {
			uc.cascadeFailed(ctx, userID, "preference", entity.ActionSoftDelete, 0, err)
			return err
		}

		entry := uc.recorder.Record(user, entity.ActionSoftDelete, actorID, "User soft-deleted")
		if err := uc.save(ctx, user); err != nil {
			return err
		}

		uc.transitioned(ctx, user, entry)
		uc.Logger.Info(ctx, "User dependents soft-deleted", map[string]interface{}{
			"user_id":             userID,
			"posts_deleted":       posts,
			"preferences_deleted": prefs,
		})
		return nil
	})
}

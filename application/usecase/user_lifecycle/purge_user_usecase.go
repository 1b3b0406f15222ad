package user_lifecycle

import (
	"context"

	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
)

type PurgeUserUseCase struct {
	*lifecycle
}

// Execute permanently removes a soft-deleted user whose grace period has
// elapsed, together with its posts and preferences. The HARD_DELETE entry
// only survives in the log.
func (uc *PurgeUserUseCase) Execute(ctx context.Context, actorID, userID string) error {
	return uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := uc.findAny(ctx, userID)
		if err != nil {
			return err
		}
		if !user.Deleted {
			return domainerr.ErrUserNotDeleted(userID, "purge")
		}
		deadline, ok := user.GraceDeadline(uc.GracePeriod)
		if !ok {
			return domainerr.ErrDeletionTimestampMissing(userID)
		}
		if uc.now().Before(deadline) {
			return domainerr.ErrGracePeriodActive(userID, uc.GracePeriod, deadline)
		}

		if err := uc.Preferences.PurgeForUser(ctx, userID); err != nil {
			uc.cascadeFailed(ctx, userID, "preference", entity.ActionHardDelete, 0, err)
			return err
		}
		if err := uc.Posts.PurgeAllForUser(ctx, userID); err != nil {
			uc.cascadeFailed(ctx, userID, "post", entity.ActionHardDelete, 0, err)
			return err
		}

		entry := uc.recorder.Record(user, entity.ActionHardDelete, actorID, "User permanently deleted")

		if err := uc.Users.DeleteByID(ctx, userID); err != nil {
			return mapUserErr(userID, "delete user", err)
		}

		uc.transitioned(ctx, user, entry)
		uc.Logger.Info(ctx, "User purged", map[string]interface{}{
			"user_id":      userID,
			"username":     user.Username,
			"audit_events": len(user.AuditTrail),
		})
		return nil
	})
}

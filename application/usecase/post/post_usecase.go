package post

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const entityType = "post"

// PostUseCaseImpl owns post creation and soft-deletion. The cascade methods
// are driven by the user lifecycle and are not part of the inbound port.
type PostUseCaseImpl struct {
	postRepo outbound.PostRepository
	userRepo outbound.UserRepository
	clock    clock.Clock
	logger   logger.Logger
}

func NewPostUseCase(
	postRepo outbound.PostRepository,
	userRepo outbound.UserRepository,
	clk clock.Clock,
	log logger.Logger,
) *PostUseCaseImpl {
	if clk == nil {
		clk = clock.WallClock
	}
	return &PostUseCaseImpl{
		postRepo: postRepo,
		userRepo: userRepo,
		clock:    clk,
		logger:   log,
	}
}

var _ inbound.PostUseCase = (*PostUseCaseImpl)(nil)

func (uc *PostUseCaseImpl) CreatePost(ctx context.Context, userID string, req inbound.CreatePostRequest) (*entity.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domainerr.ErrMissingField("title")
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, domainerr.ErrUserNotFound(userID)
		}
		return nil, domainerr.ErrDatabaseError("find user", err)
	}
	if user.Deleted {
		return nil, domainerr.ErrUserSoftDeleted(userID, "create post")
	}

	post := entity.NewPost(uuid.NewString(), userID, req.Title, req.Content, uc.clock.Now().UTC())
	if err := uc.postRepo.Save(ctx, post); err != nil {
		return nil, domainerr.ErrDatabaseError("save post", err)
	}

	logger.LogLifecycleEvent(ctx, uc.logger, entityType, entity.ActionCreate, post.ID, "", map[string]interface{}{
		"user_id": userID,
	})
	return post, nil
}

// ListActivePosts only checks that the owner exists; a soft-deleted owner
// can still list posts that survived.
func (uc *PostUseCaseImpl) ListActivePosts(ctx context.Context, userID string, req inbound.ListPostsRequest) (*inbound.ListPostsResponse, error) {
	exists, err := uc.userRepo.ExistsByID(ctx, userID)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("check user", err)
	}
	if !exists {
		return nil, domainerr.ErrUserNotFound(userID)
	}

	posts, total, err := uc.postRepo.FindByUserID(ctx, userID, outbound.OnlyActive, req.Page)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("list posts", err)
	}

	resp := &inbound.ListPostsResponse{Posts: posts}
	if req.Page != nil {
		resp.Pagination = inbound.NewPaginationInfo(*req.Page, total)
	}
	return resp, nil
}

// SoftDeletePost is a no-op for a post that was already deleted directly.
// A post deleted by its owner's cascade is re-marked as deleted directly so
// that restoring the owner does not bring it back.
func (uc *PostUseCaseImpl) SoftDeletePost(ctx context.Context, postID string) error {
	post, err := uc.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, outbound.ErrPostNotFound) {
			return domainerr.ErrPostNotFound(postID)
		}
		return domainerr.ErrDatabaseError("find post", err)
	}
	if post.Deleted {
		if !post.KeepDeleted() {
			return nil
		}
		if err := uc.postRepo.Save(ctx, post); err != nil {
			return domainerr.ErrDatabaseError("save post", err)
		}
		return nil
	}

	post.MarkDeleted(uc.clock.Now().UTC(), false)
	if err := uc.postRepo.Save(ctx, post); err != nil {
		return domainerr.ErrDatabaseError("save post", err)
	}

	logger.LogLifecycleEvent(ctx, uc.logger, entityType, entity.ActionSoftDelete, postID, "", map[string]interface{}{
		"user_id": post.UserID,
	})
	return nil
}

// CascadeSoftDelete soft-deletes every active post of userID, one save at a
// time. On failure it returns how many posts were already transitioned.
func (uc *PostUseCaseImpl) CascadeSoftDelete(ctx context.Context, userID string) (int, error) {
	posts, _, err := uc.postRepo.FindByUserID(ctx, userID, outbound.OnlyActive, nil)
	if err != nil {
		return 0, domainerr.ErrDatabaseError("list posts", err)
	}

	now := uc.clock.Now().UTC()
	for i, post := range posts {
		post.MarkDeleted(now, true)
		if err := uc.postRepo.Save(ctx, post); err != nil {
			return i, domainerr.ErrDatabaseError("save post", err)
		}
	}
	return len(posts), nil
}

// CascadeRestore brings back the posts that CascadeSoftDelete removed.
// Posts deleted directly stay deleted.
func (uc *PostUseCaseImpl) CascadeRestore(ctx context.Context, userID string) (int, error) {
	posts, _, err := uc.postRepo.FindByUserID(ctx, userID, outbound.OnlyDeleted, nil)
	if err != nil {
		return 0, domainerr.ErrDatabaseError("list posts", err)
	}

	now := uc.clock.Now().UTC()
	restored := 0
	for _, post := range posts {
		if !post.DeletedByCascade {
			continue
		}
		post.ClearDeleted(now)
		if err := uc.postRepo.Save(ctx, post); err != nil {
			return restored, domainerr.ErrDatabaseError("save post", err)
		}
		restored++
	}
	return restored, nil
}

func (uc *PostUseCaseImpl) PurgeAllForUser(ctx context.Context, userID string) error {
	if err := uc.postRepo.DeleteByUserID(ctx, userID); err != nil {
		return domainerr.ErrDatabaseError("delete posts", err)
	}
	return nil
}

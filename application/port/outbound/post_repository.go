package outbound

import (
	"context"
	"errors"

	"github.com/complyance/governance/domain/entity"
)

var ErrPostNotFound = errors.New("post not found")

// DeletedFilter narrows owner lookups by soft-delete state.
type DeletedFilter int

const (
	AnyState DeletedFilter = iota
	OnlyActive
	OnlyDeleted
)

func (f DeletedFilter) Matches(deleted bool) bool {
	switch f {
	case OnlyActive:
		return !deleted
	case OnlyDeleted:
		return deleted
	}
	return true
}

type PostRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Post, error)
	// FindByUserID returns posts in creation order unless page carries a sort.
	// The int result is the total number of matches before paging.
	FindByUserID(ctx context.Context, userID string, filter DeletedFilter, page *PageQuery) ([]*entity.Post, int, error)
	Save(ctx context.Context, post *entity.Post) error
	DeleteByUserID(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
}

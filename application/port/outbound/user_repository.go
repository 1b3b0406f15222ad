package outbound

import (
	"context"
	"errors"

	"github.com/complyance/governance/domain/entity"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository persists users and their audit trail. FindByID ignores the
// deleted flag; FindActiveByID treats a soft-deleted user as missing.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindActiveByID(ctx context.Context, id string) (*entity.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAllActive(ctx context.Context, page *PageQuery) ([]*entity.User, int, error)
	Save(ctx context.Context, user *entity.User) error
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

package outbound

import (
	"context"
	"errors"

	"github.com/complyance/governance/domain/entity"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepository interface {
	FindByUserID(ctx context.Context, userID string) (*entity.Preference, error)
	Save(ctx context.Context, pref *entity.Preference) error
	DeleteByUserID(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
}

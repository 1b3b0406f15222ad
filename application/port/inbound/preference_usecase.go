package inbound

import (
	"context"

	"github.com/complyance/governance/domain/entity"
)

type UpsertPreferencesRequest struct {
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

type PreferenceUseCase interface {
	UpsertPreferences(ctx context.Context, userID string, req UpsertPreferencesRequest) (*entity.Preference, error)
	GetPreferences(ctx context.Context, userID string) (*entity.Preference, error)
	SoftDeletePreferences(ctx context.Context, userID string) error
}

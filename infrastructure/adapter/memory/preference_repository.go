package memory

import (
	"context"
	"fmt"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

type PreferenceRepository struct {
	store *Store
}

func NewPreferenceRepository(store *Store) outbound.PreferenceRepository {
	return &PreferenceRepository{store: store}
}

func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID string) (*entity.Preference, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pref, ok := r.store.prefs[userID]
	if !ok {
		return nil, fmt.Errorf("find preferences for %s: %w", userID, outbound.ErrPreferenceNotFound)
	}
	return pref.Clone(), nil
}

// Save keeps at most one record per user; a second record for the same user
// replaces the first.
func (r *PreferenceRepository) Save(ctx context.Context, pref *entity.Preference) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.prefs[pref.UserID] = pref.Clone()
	return nil
}

func (r *PreferenceRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.prefs, userID)
	return nil
}

func (r *PreferenceRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.prefs), nil
}

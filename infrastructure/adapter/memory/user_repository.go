package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) outbound.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, fmt.Errorf("find user %s: %w", id, outbound.ErrUserNotFound)
	}
	return user.Clone(), nil
}

func (r *UserRepository) FindActiveByID(ctx context.Context, id string) (*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok || user.Deleted {
		return nil, fmt.Errorf("find active user %s: %w", id, outbound.ErrUserNotFound)
	}
	return user.Clone(), nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.users[id]
	return ok, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) FindAllActive(ctx context.Context, page *outbound.PageQuery) ([]*entity.User, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	active := make([]*entity.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		if !u.Deleted {
			active = append(active, u)
		}
	}
	slices.SortFunc(active, func(a, b *entity.User) int {
		return r.store.seq[a.ID] - r.store.seq[b.ID]
	})
	order(active, userOrderings, page)

	start, end := window(len(active), page)
	result := make([]*entity.User, 0, end-start)
	for _, u := range active[start:end] {
		result = append(result, u.Clone())
	}
	return result, len(active), nil
}

// Save inserts or replaces the user. Usernames stay unique across records.
func (r *UserRepository) Save(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, u := range r.store.users {
		if id != user.ID && u.Username == user.Username {
			return fmt.Errorf("save user %s: %w", user.ID, outbound.ErrUserAlreadyExists)
		}
	}
	r.store.track(user.ID)
	r.store.users[user.ID] = user.Clone()
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return fmt.Errorf("delete user %s: %w", id, outbound.ErrUserNotFound)
	}
	delete(r.store.users, id)
	delete(r.store.seq, id)
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.users), nil
}

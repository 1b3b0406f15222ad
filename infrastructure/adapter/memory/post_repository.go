package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

type PostRepository struct {
	store *Store
}

func NewPostRepository(store *Store) outbound.PostRepository {
	return &PostRepository{store: store}
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	post, ok := r.store.posts[id]
	if !ok {
		return nil, fmt.Errorf("find post %s: %w", id, outbound.ErrPostNotFound)
	}
	return post.Clone(), nil
}

func (r *PostRepository) FindByUserID(ctx context.Context, userID string, filter outbound.DeletedFilter, page *outbound.PageQuery) ([]*entity.Post, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matches []*entity.Post
	for _, p := range r.store.posts {
		if p.UserID == userID && filter.Matches(p.Deleted) {
			matches = append(matches, p)
		}
	}
	slices.SortFunc(matches, func(a, b *entity.Post) int {
		return r.store.seq[a.ID] - r.store.seq[b.ID]
	})
	order(matches, postOrderings, page)

	start, end := window(len(matches), page)
	result := make([]*entity.Post, 0, end-start)
	for _, p := range matches[start:end] {
		result = append(result, p.Clone())
	}
	return result, len(matches), nil
}

func (r *PostRepository) Save(ctx context.Context, post *entity.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.track(post.ID)
	r.store.posts[post.ID] = post.Clone()
	return nil
}

func (r *PostRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, p := range r.store.posts {
		if p.UserID == userID {
			delete(r.store.posts, id)
			delete(r.store.seq, id)
		}
	}
	return nil
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.posts), nil
}

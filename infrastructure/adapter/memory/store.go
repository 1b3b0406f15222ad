// Package memory keeps every record in process memory. Records are cloned on
// the way in and out so callers never share state with the store.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	posts map[string]*entity.Post
	prefs map[string]*entity.Preference // keyed by user ID

	// seq records insertion order so unsorted listings are stable.
	seq     map[string]int
	nextSeq int
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*entity.User),
		posts: make(map[string]*entity.Post),
		prefs: make(map[string]*entity.Preference),
		seq:   make(map[string]int),
	}
}

// Ping reports the context state only; the store itself cannot be unreachable.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Transactor returns a passthrough unit of work. Cascades against the memory
// store stay best-effort.
func (s *Store) Transactor() outbound.Transactor {
	return passthroughTransactor{}
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// track must be called with the write lock held.
func (s *Store) track(id string) {
	if _, ok := s.seq[id]; ok {
		return
	}
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

type comparator[T any] func(a, b T) int

var userOrderings = map[string]comparator[*entity.User]{
	"createdAt": func(a, b *entity.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b *entity.User) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"username":  func(a, b *entity.User) int { return strings.Compare(a.Username, b.Username) },
	"email":     func(a, b *entity.User) int { return strings.Compare(a.Email, b.Email) },
	"name":      func(a, b *entity.User) int { return strings.Compare(a.Name, b.Name) },
	"status":    func(a, b *entity.User) int { return strings.Compare(a.Status, b.Status) },
}

var postOrderings = map[string]comparator[*entity.Post]{
	"createdAt": func(a, b *entity.Post) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b *entity.Post) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"title":     func(a, b *entity.Post) int { return strings.Compare(a.Title, b.Title) },
}

// order sorts items by page.SortBy when it names a known field. Unknown
// fields keep insertion order.
func order[T any](items []T, orderings map[string]comparator[T], page *outbound.PageQuery) {
	if page == nil || page.SortBy == "" {
		return
	}
	cmpFn, ok := orderings[page.SortBy]
	if !ok {
		return
	}
	desc := page.Direction == outbound.SortDesc
	slices.SortStableFunc(items, func(a, b T) int {
		c := cmpFn(a, b)
		if desc {
			return -c
		}
		return c
	})
}

// window returns the slice bounds of the requested page.
func window(total int, page *outbound.PageQuery) (int, int) {
	if page == nil || page.Size <= 0 {
		return 0, total
	}
	start := max(0, min(page.Offset(), total))
	end := start + min(page.Size, total-start)
	return start, end
}

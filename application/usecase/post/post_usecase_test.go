package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/adapter/memory"
	"github.com/complyance/governance/infrastructure/service/logger"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// flakyPostRepository fails every Save after the first failAfter calls.
type flakyPostRepository struct {
	outbound.PostRepository
	failAfter int
	saves     int
}

func (r *flakyPostRepository) Save(ctx context.Context, post *entity.Post) error {
	if r.saves >= r.failAfter {
		return errors.New("connection reset")
	}
	r.saves++
	return r.PostRepository.Save(ctx, post)
}

type fixture struct {
	ctx   context.Context
	clock *testclock.Clock
	users outbound.UserRepository
	posts outbound.PostRepository
	uc    *PostUseCaseImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:   context.Background(),
		clock: testclock.NewClock(start),
		users: memory.NewUserRepository(store),
		posts: memory.NewPostRepository(store),
	}
	f.uc = NewPostUseCase(f.posts, f.users, f.clock, logger.NewNopLogger())
	return f
}

func (f *fixture) addUser(t *testing.T, id string, deleted bool) {
	t.Helper()
	u := entity.NewUser(id, id, id+"@example.com", id, []string{"USER"}, "ACTIVE", start)
	if deleted {
		u.MarkDeleted(start)
	}
	require.NoError(t, f.users.Save(f.ctx, u))
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	f.addUser(t, "bob", true)

	t.Run("active owner", func(t *testing.T) {
		post, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "Hello", Content: "World"})
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "alice", post.UserID)
		assert.Equal(t, start, post.CreatedAt)
		assert.Equal(t, post.CreatedAt, post.UpdatedAt)
		assert.False(t, post.Deleted)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := f.uc.CreatePost(f.ctx, "nobody", inbound.CreatePostRequest{Title: "x"})
		assert.True(t, domainerr.IsNotFound(err))
	})

	t.Run("soft-deleted owner saves nothing", func(t *testing.T) {
		_, err := f.uc.CreatePost(f.ctx, "bob", inbound.CreatePostRequest{Title: "x"})
		assert.True(t, domainerr.IsForbidden(err))

		_, total, err := f.posts.FindByUserID(f.ctx, "bob", outbound.AnyState, nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "  "})
		assert.Equal(t, domainerr.KindValidation, domainerr.KindOf(err))
	})
}

func TestListActivePosts(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)

	first, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "one"})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "two"})
	require.NoError(t, err)
	require.NoError(t, f.uc.SoftDeletePost(f.ctx, first.ID))

	resp, err := f.uc.ListActivePosts(f.ctx, "alice", inbound.ListPostsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "two", resp.Posts[0].Title)
	assert.Nil(t, resp.Pagination)

	page := &outbound.PageQuery{Page: 0, Size: 5, SortBy: "createdAt", Direction: outbound.SortDesc}
	resp, err = f.uc.ListActivePosts(f.ctx, "alice", inbound.ListPostsRequest{Page: page})
	require.NoError(t, err)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.TotalItems)
	assert.Equal(t, "createdAt,desc", resp.Pagination.Sort)

	_, err = f.uc.ListActivePosts(f.ctx, "nobody", inbound.ListPostsRequest{})
	assert.True(t, domainerr.IsNotFound(err))
}

func TestSoftDeletePost_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	post, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "one"})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	require.NoError(t, f.uc.SoftDeletePost(f.ctx, post.ID))
	f.clock.Advance(time.Minute)
	require.NoError(t, f.uc.SoftDeletePost(f.ctx, post.ID))

	stored, err := f.posts.FindByID(f.ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
	require.NotNil(t, stored.DeletedAt)
	assert.Equal(t, start.Add(time.Minute), *stored.DeletedAt)

	err = f.uc.SoftDeletePost(f.ctx, "missing")
	assert.True(t, domainerr.IsNotFound(err))
}

func TestCascade_RestoresOnlyCascadeDeletedPosts(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)

	direct, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "direct"})
	require.NoError(t, err)
	_, err = f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "a"})
	require.NoError(t, err)
	_, err = f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "b"})
	require.NoError(t, err)
	require.NoError(t, f.uc.SoftDeletePost(f.ctx, direct.ID))

	n, err := f.uc.CascadeSoftDelete(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.uc.CascadeRestore(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, _, err := f.posts.FindByUserID(f.ctx, "alice", outbound.OnlyActive, nil)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	stored, err := f.posts.FindByID(f.ctx, direct.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
}

func TestCascadeSoftDelete_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	for _, title := range []string{"a", "b", "c"} {
		_, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: title})
		require.NoError(t, err)
	}

	flaky := &flakyPostRepository{PostRepository: f.posts, failAfter: 1}
	uc := NewPostUseCase(flaky, f.users, f.clock, logger.NewNopLogger())

	n, err := uc.CascadeSoftDelete(f.ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domainerr.KindDatabase, domainerr.KindOf(err))

	deleted, _, err := f.posts.FindByUserID(f.ctx, "alice", outbound.OnlyDeleted, nil)
	require.NoError(t, err)
	assert.Len(t, deleted, 1)
}

func TestPurgeAllForUser(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	f.addUser(t, "bob", false)
	_, err := f.uc.CreatePost(f.ctx, "alice", inbound.CreatePostRequest{Title: "a"})
	require.NoError(t, err)
	_, err = f.uc.CreatePost(f.ctx, "bob", inbound.CreatePostRequest{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, f.uc.PurgeAllForUser(f.ctx, "alice"))

	count, err := f.posts.Count(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

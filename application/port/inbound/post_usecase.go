package inbound

import (
	"context"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/domain/entity"
)

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ListPostsRequest struct {
	Page *outbound.PageQuery
}

type ListPostsResponse struct {
	Posts      []*entity.Post  `json:"posts"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type PostUseCase interface {
	CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*entity.Post, error)
	ListActivePosts(ctx context.Context, userID string, req ListPostsRequest) (*ListPostsResponse, error)
	SoftDeletePost(ctx context.Context, postID string) error
}

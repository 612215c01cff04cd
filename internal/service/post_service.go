package service

import (
	"context"
	"errors"

	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/util"
)

type PostService interface {
	CreatePost(ctx context.Context, req models.CreatePostRequest) (int64, error)
	ListAll(ctx context.Context) ([]models.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	clock    util.Clock
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, clock util.Clock) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		clock:    clock,
	}
}

func (p *postService) CreatePost(ctx context.Context, req models.CreatePostRequest) (int64, error) {
	if req.Text == "" {
		return 0, ErrEmptyText
	}
	if req.AuthorID <= 0 {
		return 0, ErrMissingAuthor
	}

	// the foreign key still rejects an author deleted between this check and the insert
	if _, err := p.userRepo.GetByID(ctx, req.AuthorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAuthorNotFound
		}
		return 0, err
	}

	post := &models.Post{
		Text:        req.Text,
		DateCreated: p.clock.NowUtc(),
		Author:      req.AuthorID,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return 0, err
	}

	return post.ID, nil
}

func (p *postService) ListAll(ctx context.Context) ([]models.Post, error) {
	return p.postRepo.List(ctx)
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"postboard/internal/models"
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(parentCtx context.Context, post *models.Post) error {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	query := `
		INSERT INTO posts (text, date_created, author)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.DB.GetContext(ctx, &post.ID, query, post.Text, post.DateCreated, post.Author)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) List(parentCtx context.Context) ([]models.Post, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	posts := []models.Post{}

	query := `SELECT id, text, date_created, author FROM posts ORDER BY id`

	err := r.DB.SelectContext(ctx, &posts, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	return posts, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"postboard/internal/models"
)

const userColumns = `id, username, email, password, date_created`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and fills in the id assigned by the database.
// user.Password must already be hashed.
func (r *userRepository) Create(parentCtx context.Context, user *models.User) error {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	query := `
		INSERT INTO users (username, email, password, date_created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &user.ID, query, user.Username, user.Email, user.Password, user.DateCreated)
	if err != nil {
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(parentCtx context.Context, userID int64) (*models.User, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(parentCtx context.Context, username string) (*models.User, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по username: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ExistsByUsername(parentCtx context.Context, username string) (bool, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке username: %w", err)
	}

	return exists, nil
}

func (r *userRepository) ExistsByEmail(parentCtx context.Context, email string) (bool, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке email: %w", err)
	}

	return exists, nil
}

// List returns every user in insertion order.
func (r *userRepository) List(parentCtx context.Context) ([]models.User, error) {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	users := []models.User{}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	return users, nil
}

// DeleteByUsername removes the user; the posts foreign key cascades in the same
// statement.
func (r *userRepository) DeleteByUsername(parentCtx context.Context, username string) error {
	ctx, cancel := getQueryContext(parentCtx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("ошибка при удалении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пользователь %s: %w", username, ErrNotFound)
	}

	return nil
}

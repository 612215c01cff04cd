package models

import (
	"time"
)

// User holds the password as a bcrypt hash only.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"password" db:"password"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

type Post struct {
	ID          int64     `json:"id" db:"id"`
	Text        string    `json:"text" db:"text"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
	Author      int64     `json:"author" db:"author"`
}

type RegisterUserRequest struct {
	Username string
	Email    string
	Password string
}

// CreatePostRequest carries the author id; zero means none was supplied.
type CreatePostRequest struct {
	Text     string
	AuthorID int64
}

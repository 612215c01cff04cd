package service

import "errors"

type Kind int

const (
	// KindInternal covers store and other unexpected failures.
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// Error is an expected failure the caller can report back to the client.
// Message is safe to show to end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMissingData       = &Error{Kind: KindValidation, Message: "Missing data"}
	ErrInvalidData       = &Error{Kind: KindValidation, Message: "Invalid data"}
	ErrDuplicateUsername = &Error{Kind: KindConflict, Message: "User with that username already exists"}
	ErrDuplicateEmail    = &Error{Kind: KindConflict, Message: "User with that email already exists"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Message: "User doesn't exist"}
	ErrInvalidPassword   = &Error{Kind: KindAuth, Message: "Invalid password provided"}
	ErrUnauthenticated   = &Error{Kind: KindAuth, Message: "Authentication required"}
	ErrEmptyText         = &Error{Kind: KindValidation, Message: "Post text cannot be empty"}
	ErrMissingAuthor     = &Error{Kind: KindValidation, Message: "User id missing"}
	ErrAuthorNotFound    = &Error{Kind: KindValidation, Message: "Author doesn't exist"}
)

// KindOf returns KindInternal for anything that is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

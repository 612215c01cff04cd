package service

import (
	"postboard/internal/hasher"
	"postboard/internal/repository"
	"postboard/internal/util"
)

type Service struct {
	User UserService
	Post PostService
	Auth AuthService
}

func NewService(rep *repository.Repository, hasher hasher.Hasher, clock util.Clock) *Service {
	return &Service{
		User: NewUserService(rep.User, hasher, clock),
		Post: NewPostService(rep.Post, rep.User, clock),
		Auth: NewAuthService(rep.User, hasher),
	}
}

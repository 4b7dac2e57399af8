package service

import (
	"errors"

	"github.com/user/moviehub/internal/repository"
)

var (
	// ErrDuplicateEmail 邮箱已注册
	ErrDuplicateEmail = repository.ErrDuplicateEmail
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooShort 密码长度不足
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrInvalidToken Token 缺失、签名错误或已过期
	ErrInvalidToken = errors.New("invalid token")
	// ErrMovieNotFound 上游不存在该电影
	ErrMovieNotFound = errors.New("movie not found")
	// ErrUpstream 上游请求失败
	ErrUpstream = errors.New("upstream provider error")
)

package repository

import "errors"

// ErrDuplicateEmail 邮箱已被注册
var ErrDuplicateEmail = errors.New("email already registered")

package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/repository"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

// AuthResult 注册或登录成功后的结果
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService 注册、登录和 Token 校验
type AuthService struct {
	users  *repository.UserRepository
	tokens *TokenService
}

// NewAuthService 创建认证服务
func NewAuthService(users *repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register 注册新用户并签发 Token
func (s *AuthService) Register(email, username, password string) (*AuthResult, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.users.Create(email, username, password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return s.issue(user)
}

// Login 校验邮箱和密码
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil || !s.users.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Verify 校验 Token 并加载对应用户
func (s *AuthService) Verify(token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.CurrentUser(claims.UserID)
}

// CurrentUser 按 Token 中的用户 ID 加载用户，用户已删除时视为 Token 无效
func (s *AuthService) CurrentUser(userID int) (*model.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

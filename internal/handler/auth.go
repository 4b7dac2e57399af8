package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/middleware"
	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/service"
	"github.com/user/moviehub/internal/utils"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册成功响应
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// SessionResponse 登录和校验 Token 的响应，附带用户的电影库
type SessionResponse struct {
	Token string      `json:"token,omitempty"`
	User  *model.User `json:"user"`
	model.Library
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req, "Email, password and username are required") {
		return
	}

	result, err := h.Auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			utils.BadRequest(c, "User with this email already exists")
		case errors.Is(err, service.ErrPasswordTooShort):
			utils.BadRequest(c, "Password must be at least 6 characters")
		default:
			internalError(c, "Auth", err)
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req, "Email and password are required") {
		return
	}

	result, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.Unauthorized(c, "Invalid credentials")
			return
		}
		internalError(c, "Auth", err)
		return
	}

	library, err := h.loadLibrary(result.User.ID)
	if err != nil {
		internalError(c, "Auth", err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Token: result.Token, User: result.User, Library: *library})
}

// Verify 校验 Token 并返回当前用户和电影库
func (h *Handler) Verify(c *gin.Context) {
	user, err := h.Auth.Verify(middleware.BearerToken(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			utils.Unauthorized(c, "Access token required")
			return
		}
		internalError(c, "Auth", err)
		return
	}

	library, err := h.loadLibrary(user.ID)
	if err != nil {
		internalError(c, "Auth", err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{User: user, Library: *library})
}

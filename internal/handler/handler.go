package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/moviehub/internal/config"
	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/repository"
	"github.com/user/moviehub/internal/service"
	"github.com/user/moviehub/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos  *repository.Repositories
	Config *config.Config
	Tokens *service.TokenService
	Auth   *service.AuthService
	Movies *service.MovieGateway
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	tokens := service.NewTokenService(cfg.AppSecret)

	// 上游客户端共用一个 HTTP 客户端
	httpClient := utils.NewHTTPClient(cfg.UpstreamTimeout)
	tmdb := service.NewTMDBClient(cfg, httpClient)
	omdb := service.NewOMDbClient(cfg, httpClient)
	if !tmdb.Enabled() {
		log.Println("[Handler] 未配置 TMDB_TOKEN 或 TMDB_API_KEY，电影接口将返回空结果")
	}

	return &Handler{
		Repos:  repos,
		Config: cfg,
		Tokens: tokens,
		Auth:   service.NewAuthService(repos.User, tokens),
		Movies: service.NewMovieGateway(tmdb, omdb, cfg.UpstreamCacheSize, cfg.UpstreamCacheTTL),
	}
}

// bindJSON 解析请求体，缺少必填字段时返回 message
func bindJSON(c *gin.Context, req interface{}, message string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		utils.BadRequest(c, message)
		return false
	}
	utils.BadRequest(c, "Invalid request body")
	return false
}

// loadLibrary 读取用户的收藏、待看和观看记录
func (h *Handler) loadLibrary(userID int) (*model.Library, error) {
	favorites, err := h.Repos.Favorite.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("读取收藏失败: %w", err)
	}
	watchlist, err := h.Repos.Watchlist.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("读取待看列表失败: %w", err)
	}
	history, err := h.Repos.History.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("读取观看记录失败: %w", err)
	}

	return &model.Library{
		Favorites:    favorites,
		Watchlist:    watchlist,
		WatchHistory: history,
	}, nil
}

// internalError 记录内部错误，只向客户端返回通用消息
func internalError(c *gin.Context, component string, err error) {
	internalErrorWithMessage(c, component, err, "")
}

func internalErrorWithMessage(c *gin.Context, component string, err error, message string) {
	log.Printf("[%s] %s %s 失败: %v", component, c.Request.Method, c.Request.URL.Path, err)
	utils.InternalServerError(c, message)
}

package router

import (
	"log"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/handler"
	"github.com/user/moviehub/internal/middleware"
	"github.com/user/moviehub/internal/utils"
)

// NewEngine 创建带全局中间件的 Gin 引擎并注册路由
func NewEngine(h *handler.Handler) *gin.Engine {
	r := gin.New()

	// 只信任显式配置的代理，未配置时忽略 X-Forwarded-For，限流按连接地址计算
	if err := r.SetTrustedProxies(h.Config.TrustedProxies); err != nil {
		log.Printf("[Router] TRUSTED_PROXIES 配置无效，不信任任何代理: %v", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		utils.InternalServerError(c, "")
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(middleware.CORS())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/health", h.Health)

	// ==================== 认证 ====================
	authLimit := middleware.RateLimit(h.Config.AuthRateLimitRPS, h.Config.AuthRateLimitBurst)
	api.POST("/register", authLimit, h.Register)
	api.POST("/login", authLimit, h.Login)

	api.GET("/verify", h.Verify)

	requireAuth := middleware.RequireAuth(h.Tokens)

	// ==================== 电影（公开）====================
	movies := api.Group("/movies")
	{
		movies.GET("/popular", h.PopularMovies)
		movies.GET("/search", h.SearchMovies)
		movies.GET("/trending", h.TrendingMovies)
		movies.GET("/genre/:genreId", h.MoviesByGenre)
		movies.GET("/:id", h.MovieDetails)
	}
	api.GET("/genres", h.Genres)

	// ==================== 用户片单（需要登录）====================
	favorites := api.Group("/favorites", requireAuth)
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
	}

	watchlist := api.Group("/watchlist", requireAuth)
	{
		watchlist.GET("", h.ListWatchlist)
		watchlist.POST("", h.AddToWatchlist)
		watchlist.DELETE("/:id", h.RemoveFromWatchlist)
	}

	history := api.Group("/watch-history", requireAuth)
	{
		history.GET("", h.ListWatchHistory)
		history.POST("", h.RecordWatch)
	}

	r.NoRoute(h.NotFound)
}

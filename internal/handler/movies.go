package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/service"
	"github.com/user/moviehub/internal/utils"
)

// maxPage TMDB 最多允许请求第 500 页
const maxPage = 500

// parsePage 读取 page 参数，非法时取 1，并限制在 [1, 500]
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

// PopularMovies 热门电影
func (h *Handler) PopularMovies(c *gin.Context) {
	c.JSON(http.StatusOK, h.Movies.Popular(c.Request.Context(), parsePage(c)))
}

// SearchMovies 搜索电影
func (h *Handler) SearchMovies(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		utils.BadRequest(c, "Search query is required")
		return
	}

	c.JSON(http.StatusOK, h.Movies.Search(c.Request.Context(), query, parsePage(c)))
}

// TrendingMovies 本周趋势
func (h *Handler) TrendingMovies(c *gin.Context) {
	c.JSON(http.StatusOK, h.Movies.Trending(c.Request.Context()))
}

// MoviesByGenre 按类型浏览
func (h *Handler) MoviesByGenre(c *gin.Context) {
	genreID, err := strconv.Atoi(c.Param("genreId"))
	if err != nil || genreID <= 0 {
		utils.BadRequest(c, "Invalid genre id")
		return
	}

	c.JSON(http.StatusOK, h.Movies.ByGenre(c.Request.Context(), genreID, parsePage(c)))
}

// MovieDetails 电影详情
func (h *Handler) MovieDetails(c *gin.Context) {
	detail, err := h.Movies.Details(c.Request.Context(), c.Param("id"), c.Query("source"))
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			utils.NotFound(c, "Movie not found")
			return
		}
		internalErrorWithMessage(c, "Movies", err, "Failed to fetch movie details")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Genres 电影类型列表
func (h *Handler) Genres(c *gin.Context) {
	c.JSON(http.StatusOK, h.Movies.Genres(c.Request.Context()))
}

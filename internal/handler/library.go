package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/moviehub/internal/middleware"
	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/utils"
)

// LibraryRequest 收藏、待看和观看记录的请求体，movie_id 缺省时取 movie_data.id
type LibraryRequest struct {
	MovieID   model.MovieID  `json:"movie_id"`
	MovieData model.Snapshot `json:"movie_data"`
}

// collection 收藏和待看共用的操作
type collection interface {
	Upsert(userID int, movieID string, data model.Snapshot) error
	Remove(userID int, movieID string) error
	ListByUser(userID int) ([]model.Snapshot, error)
}

// bindLibraryRequest 解析并校验请求体，返回电影 ID
func bindLibraryRequest(c *gin.Context) (string, model.Snapshot, bool) {
	var req LibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return "", nil, false
	}

	movieID := strings.TrimSpace(req.MovieID.String())
	if movieID == "" && !model.IsEmptySnapshot(req.MovieData) {
		movieID = model.SnapshotMovieID(req.MovieData).String()
	}
	if movieID == "" || model.IsEmptySnapshot(req.MovieData) {
		utils.BadRequest(c, "movie_id and movie_data are required")
		return "", nil, false
	}
	return movieID, req.MovieData, true
}

func (h *Handler) listCollection(c *gin.Context, coll collection) {
	items, err := coll.ListByUser(middleware.GetUserID(c))
	if err != nil {
		internalError(c, "Library", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) addToCollection(c *gin.Context, coll collection, message string) {
	movieID, data, ok := bindLibraryRequest(c)
	if !ok {
		return
	}
	if err := coll.Upsert(middleware.GetUserID(c), movieID, data); err != nil {
		internalError(c, "Library", err)
		return
	}
	utils.Message(c, message)
}

func (h *Handler) removeFromCollection(c *gin.Context, coll collection, message string) {
	movieID := strings.TrimSpace(c.Param("id"))
	if movieID == "" {
		utils.BadRequest(c, "movie_id is required")
		return
	}
	if err := coll.Remove(middleware.GetUserID(c), movieID); err != nil {
		internalError(c, "Library", err)
		return
	}
	utils.Message(c, message)
}

// ListFavorites 收藏列表
func (h *Handler) ListFavorites(c *gin.Context) {
	h.listCollection(c, h.Repos.Favorite)
}

// AddFavorite 添加收藏，重复添加会覆盖快照
func (h *Handler) AddFavorite(c *gin.Context) {
	h.addToCollection(c, h.Repos.Favorite, "Added to favorites")
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	h.removeFromCollection(c, h.Repos.Favorite, "Removed from favorites")
}

// ListWatchlist 待看列表
func (h *Handler) ListWatchlist(c *gin.Context) {
	h.listCollection(c, h.Repos.Watchlist)
}

// AddToWatchlist 加入待看
func (h *Handler) AddToWatchlist(c *gin.Context) {
	h.addToCollection(c, h.Repos.Watchlist, "Added to watchlist")
}

// RemoveFromWatchlist 移出待看
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	h.removeFromCollection(c, h.Repos.Watchlist, "Removed from watchlist")
}

// ListWatchHistory 最近 50 条观看记录
func (h *Handler) ListWatchHistory(c *gin.Context) {
	items, err := h.Repos.History.ListByUser(middleware.GetUserID(c))
	if err != nil {
		internalError(c, "Library", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RecordWatch 记录一次观看
func (h *Handler) RecordWatch(c *gin.Context) {
	movieID, data, ok := bindLibraryRequest(c)
	if !ok {
		return
	}
	if err := h.Repos.History.Record(middleware.GetUserID(c), movieID, data); err != nil {
		internalError(c, "Library", err)
		return
	}
	utils.Message(c, "Added to watch history")
}

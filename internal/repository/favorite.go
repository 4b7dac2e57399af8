package repository

import (
	"time"

	"github.com/user/moviehub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Upsert 添加收藏，已存在则覆盖快照和时间
func (r *FavoriteRepository) Upsert(userID int, movieID string, data model.Snapshot) error {
	favorite := &model.Favorite{
		UserID:    userID,
		MovieID:   movieID,
		MovieData: data,
		AddedAt:   time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"movie_data", "added_at"}),
	}).Create(favorite).Error
}

// Remove 取消收藏，不存在时不报错
func (r *FavoriteRepository) Remove(userID int, movieID string) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.Favorite{}).Error
}

// ListByUser 获取用户收藏快照，最新的在前
func (r *FavoriteRepository) ListByUser(userID int) ([]model.Snapshot, error) {
	var favorites []*model.Favorite
	err := r.db.Where("user_id = ?", userID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.Snapshot, 0, len(favorites))
	for _, f := range favorites {
		snapshots = append(snapshots, f.MovieData)
	}
	return snapshots, nil
}

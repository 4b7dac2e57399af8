package repository

import (
	"time"

	"github.com/user/moviehub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Upsert 加入想看，已存在则覆盖快照和时间
func (r *WatchlistRepository) Upsert(userID int, movieID string, data model.Snapshot) error {
	item := &model.WatchlistItem{
		UserID:    userID,
		MovieID:   movieID,
		MovieData: data,
		AddedAt:   time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"movie_data", "added_at"}),
	}).Create(item).Error
}

// Remove 移出想看
func (r *WatchlistRepository) Remove(userID int, movieID string) error {
	return r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.WatchlistItem{}).Error
}

// ListByUser 获取想看快照，最新的在前
func (r *WatchlistRepository) ListByUser(userID int) ([]model.Snapshot, error) {
	var items []*model.WatchlistItem
	err := r.db.Where("user_id = ?", userID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.Snapshot, 0, len(items))
	for _, it := range items {
		snapshots = append(snapshots, it.MovieData)
	}
	return snapshots, nil
}

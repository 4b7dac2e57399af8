package repository

import (
	"time"

	"github.com/user/moviehub/internal/model"
	"gorm.io/gorm"
)

// HistoryLimit 观影历史单次最多返回条数
const HistoryLimit = 50

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record 追加一条观影记录，重复观看不去重
func (r *HistoryRepository) Record(userID int, movieID string, data model.Snapshot) error {
	return r.db.Create(&model.WatchHistory{
		UserID:    userID,
		MovieID:   movieID,
		MovieData: data,
		WatchedAt: time.Now(),
	}).Error
}

// ListByUser 获取用户最近的观影历史
func (r *HistoryRepository) ListByUser(userID int) ([]model.Snapshot, error) {
	var histories []*model.WatchHistory
	err := r.db.Where("user_id = ?", userID).
		Order("watched_at DESC").
		Order("id DESC").
		Limit(HistoryLimit).
		Find(&histories).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.Snapshot, 0, len(histories))
	for _, h := range histories {
		snapshots = append(snapshots, h.MovieData)
	}
	return snapshots, nil
}

// Prune 每个用户只保留最新的 keep 条记录，返回删除条数
func (r *HistoryRepository) Prune(keep int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM watch_histories
		WHERE id IN (
			SELECT h.id FROM watch_histories h
			WHERE (
				SELECT COUNT(*) FROM watch_histories n
				WHERE n.user_id = h.user_id
				  AND (n.watched_at > h.watched_at OR (n.watched_at = h.watched_at AND n.id > h.id))
			) >= ?
		)
	`, keep)
	return result.RowsAffected, result.Error
}

package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id" gorm:"primaryKey"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" db:"username" gorm:"not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Favorite 收藏（同一用户同一电影只保留一条）
type Favorite struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_movie"`
	MovieID   string    `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:idx_favorite_user_movie"`
	MovieData Snapshot  `json:"movie_data" db:"movie_data"`
	AddedAt   time.Time `json:"added_at" db:"added_at" gorm:"index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// WatchlistItem 想看列表（同一用户同一电影只保留一条）
type WatchlistItem struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:idx_watchlist_user_movie"`
	MovieID   string    `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:idx_watchlist_user_movie"`
	MovieData Snapshot  `json:"movie_data" db:"movie_data"`
	AddedAt   time.Time `json:"added_at" db:"added_at" gorm:"index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// WatchHistory 观影历史（每次观看追加一条）
type WatchHistory struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;index:idx_history_user_watched"`
	MovieID   string    `json:"movie_id" db:"movie_id" gorm:"not null"`
	MovieData Snapshot  `json:"movie_data" db:"movie_data"`
	WatchedAt time.Time `json:"watched_at" db:"watched_at" gorm:"index:idx_history_user_watched"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Library 用户的三个片单，登录和校验时一起返回
type Library struct {
	Favorites    []Snapshot `json:"favorites"`
	Watchlist    []Snapshot `json:"watchlist"`
	WatchHistory []Snapshot `json:"watchHistory"`
}

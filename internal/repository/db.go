package repository

import (
	"fmt"
	"log"
	"time"

	"github.com/user/moviehub/internal/config"
	"github.com/user/moviehub/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接并同步表结构
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.DBDriver)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite 单写者，避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	log.Printf("[DB] 已连接 %s", dialector.Name())
	return db, nil
}

// Open 打开数据库并自动迁移，测试中直接传入 sqlite 方言
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Favorite{},
		&model.WatchlistItem{},
		&model.WatchHistory{},
	); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// SQLiteDSN 开启外键约束，保证删除用户时级联删除片单
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on"
}

// Repositories 仓库集合
type Repositories struct {
	DB        *gorm.DB
	User      *UserRepository
	Favorite  *FavoriteRepository
	Watchlist *WatchlistRepository
	History   *HistoryRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, pepper string) *Repositories {
	return &Repositories{
		DB:        db,
		User:      NewUserRepository(db, pepper),
		Favorite:  NewFavoriteRepository(db),
		Watchlist: NewWatchlistRepository(db),
		History:   NewHistoryRepository(db),
	}
}

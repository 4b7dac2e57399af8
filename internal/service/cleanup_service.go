package service

import (
	"log"
	"time"

	"github.com/user/moviehub/internal/repository"
)

// CleanupService 清理服务
type CleanupService struct {
	repos     *repository.Repositories
	retention int
	interval  time.Duration
}

// NewCleanupService 创建清理服务，retention 为每个用户保留的观看记录条数
func NewCleanupService(repos *repository.Repositories, retention int) *CleanupService {
	return &CleanupService{
		repos:     repos,
		retention: retention,
		interval:  24 * time.Hour,
	}
}

// Start 启动定时清理任务，retention <= 0 时不启动
func (s *CleanupService) Start() {
	if s.retention <= 0 {
		log.Println("[CleanupService] 未设置观看记录保留条数，跳过清理任务")
		return
	}

	ticker := time.NewTicker(s.interval)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始清理观看记录...")

	affected, err := s.repos.History.Prune(s.retention)
	if err != nil {
		log.Printf("[CleanupService] 清理观看记录失败: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("[CleanupService] 已清理 %d 条超出保留数量的观看记录", affected)
	}
}

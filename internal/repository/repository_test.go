package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestRepos 每个测试使用独立的 sqlite 文件
func newTestRepos(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()

	db, err := Open(sqlite.Open(SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewRepositories(db, "test-pepper"), db
}

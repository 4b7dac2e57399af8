package repository

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/user/moviehub/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository struct {
	db     *gorm.DB
	pepper []byte
}

func NewUserRepository(db *gorm.DB, pepper string) *UserRepository {
	return &UserRepository{db: db, pepper: []byte(pepper)}
}

// Create 创建用户
func (r *UserRepository) Create(email, username, password string) (*model.User, error) {
	existing, err := r.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	// 密码哈希
	hash, err := bcrypt.GenerateFromPassword(r.peppered(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := r.db.Create(user).Error; err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// FindByEmail 根据邮箱查找用户（区分大小写）
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(id int) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), r.peppered(password))
	return err == nil
}

// Delete 删除用户，片单由外键级联删除
func (r *UserRepository) Delete(userID int) error {
	return r.db.Delete(&model.User{}, userID).Error
}

// peppered 先用全局 pepper 做 HMAC，结果固定 44 字节，不受 bcrypt 72 字节上限影响
func (r *UserRepository) peppered(password string) []byte {
	mac := hmac.New(sha256.New, r.pepper)
	mac.Write([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

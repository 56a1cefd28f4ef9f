package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"backend/internal/common"
)

// Service 用户服务
type Service struct {
	db *gorm.DB
}

// NewService 创建用户服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"max=120"`
}

// Register 注册新用户，用户名或邮箱已存在返回冲突错误
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if count > 0 {
		return nil, common.NewBusinessError(common.CodeUserAlreadyExists, "")
	}

	u := &User{
		Username: username,
		Email:    email,
		FullName: req.FullName,
		Role:     "user",
		IsActive: true,
	}
	if err := u.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("设置密码失败: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return u, nil
}

// Authenticate 校验用户名（或邮箱）与密码
// 用户不存在、密码错误、账号停用统一返回凭证错误，不泄露具体原因
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)

	var u User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeInvalidCredentials, "")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if !u.IsActive || !u.CheckPassword(password) {
		return nil, common.NewBusinessError(common.CodeInvalidCredentials, "")
	}
	return &u, nil
}

// GetByID 按 ID 获取用户
func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeUserNotFound, "")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &u, nil
}

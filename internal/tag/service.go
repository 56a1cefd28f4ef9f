package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"backend/internal/common"
)

// Service 标签服务
type Service struct {
	db *gorm.DB
}

// NewService 创建标签服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Color       string `json:"color" binding:"max=20"`
	Description string `json:"description"`
}

// Create 创建标签，名称重复返回冲突错误
func (s *Service) Create(ctx context.Context, req *CreateTagRequest) (*Tag, error) {
	t := &Tag{
		Name:        strings.TrimSpace(req.Name),
		Color:       req.Color,
		Description: req.Description,
	}
	if t.Name == "" {
		return nil, common.NewValidationError("标签名不能为空")
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewBusinessError(common.CodeTagAlreadyExists, "")
		}
		return nil, fmt.Errorf("创建标签失败: %w", err)
	}
	return t, nil
}

// UpdateTagRequest 更新标签请求
type UpdateTagRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
	Description *string `json:"description"`
}

// Update 更新标签，改名撞上已有名称返回冲突错误
func (s *Service) Update(ctx context.Context, tagID string, req *UpdateTagRequest) (*Tag, error) {
	t, err := s.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.NewValidationError("标签名不能为空")
		}
		updates["name"] = name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return t, nil
	}

	if err := s.db.WithContext(ctx).Model(t).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewBusinessError(common.CodeTagAlreadyExists, "")
		}
		return nil, fmt.Errorf("更新标签失败: %w", err)
	}
	return s.Get(ctx, tagID)
}

// Delete 删除标签及其所有关联
func (s *Service) Delete(ctx context.Context, tagID string) error {
	if _, err := s.Get(ctx, tagID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tagID).Delete(&PromptTag{}).Error; err != nil {
			return fmt.Errorf("删除标签关联失败: %w", err)
		}
		if err := tx.Where("id = ?", tagID).Delete(&Tag{}).Error; err != nil {
			return fmt.Errorf("删除标签失败: %w", err)
		}
		return nil
	})
}

// Get 获取单个标签
func (s *Service) Get(ctx context.Context, tagID string) (*Tag, error) {
	var t Tag
	if err := s.db.WithContext(ctx).Where("id = ?", tagID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeTagNotFound, "")
		}
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return &t, nil
}

// TagWithCount 标签及其使用数
type TagWithCount struct {
	Tag
	PromptCount int64 `json:"prompt_count"`
}

// List 按名称升序列出所有标签，附带使用数
func (s *Service) List(ctx context.Context) ([]TagWithCount, error) {
	results := make([]TagWithCount, 0)
	if err := s.db.WithContext(ctx).
		Model(&Tag{}).
		Select("tags.*, COUNT(prompt_tags.id) AS prompt_count").
		Joins("LEFT JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("查询标签列表失败: %w", err)
	}
	return results, nil
}

// Attach 给提示词打标签
// 已关联时视为成功的空操作，不报错也不产生新记录
func (s *Service) Attach(ctx context.Context, promptID, tagID string) error {
	if _, err := s.Get(ctx, tagID); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&PromptTag{}).
		Where("prompt_id = ? AND tag_id = ?", promptID, tagID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("查询标签关联失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Create(&PromptTag{PromptID: promptID, TagID: tagID}).Error; err != nil {
		// 并发场景撞唯一索引同样视为已关联
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("关联标签失败: %w", err)
	}
	return nil
}

// Detach 移除提示词上的标签，关联不存在返回未找到错误
func (s *Service) Detach(ctx context.Context, promptID, tagID string) error {
	result := s.db.WithContext(ctx).
		Where("prompt_id = ? AND tag_id = ?", promptID, tagID).
		Delete(&PromptTag{})
	if result.Error != nil {
		return fmt.Errorf("移除标签关联失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.NewBusinessError(common.CodeTagNotAttached, "")
	}
	return nil
}

// PromptIDsByTag 查询标签下的提示词 ID 列表
func (s *Service) PromptIDsByTag(ctx context.Context, tagID string) ([]string, error) {
	if _, err := s.Get(ctx, tagID); err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	if err := s.db.WithContext(ctx).Model(&PromptTag{}).
		Where("tag_id = ?", tagID).
		Pluck("prompt_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询标签关联失败: %w", err)
	}
	return ids, nil
}

// isUniqueViolation 判断是否唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

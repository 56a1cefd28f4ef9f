package prompt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/metrics"
	"backend/internal/tag"
)

// PromptService 提示词服务
type PromptService struct {
	common.BaseService
	versions *VersionService
}

// NewPromptService 创建提示词服务
func NewPromptService(db *gorm.DB, versions *VersionService) *PromptService {
	return &PromptService{
		BaseService: common.BaseService{DB: db},
		versions:    versions,
	}
}

// CreatePromptRequest 创建提示词请求
type CreatePromptRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	TaskType    string   `json:"task_type" binding:"max=50"`
	Domain      string   `json:"domain" binding:"max=50"`
	IsPublic    bool     `json:"is_public"`
	PromptText  string   `json:"prompt_text" binding:"required"`
	TagIDs      []string `json:"tag_ids"`
}

// PromptDetail 提示词详情
type PromptDetail struct {
	Prompt         *Prompt        `json:"prompt"`
	CurrentVersion *PromptVersion `json:"current_version,omitempty"`
	Tags           []tag.Tag      `json:"tags"`
	VersionCount   int64          `json:"version_count"`
}

// Create 创建提示词
// 提示词、初始版本（版本号 1、当前）与标签关联在同一事务内写入，
// 任何一步失败则整体回滚，不存在没有版本的提示词
func (s *PromptService) Create(ctx context.Context, ownerID string, req *CreatePromptRequest) (*PromptDetail, error) {
	prompt := &Prompt{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		Domain:      req.Domain,
		IsPublic:    req.IsPublic,
	}

	var initial *PromptVersion
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prompt).Error; err != nil {
			return fmt.Errorf("创建提示词失败: %w", err)
		}

		var err error
		initial, err = s.versions.CreateInitialVersion(tx, prompt.ID, req.PromptText)
		if err != nil {
			return err
		}

		// 标签引用不存在则整体失败
		for _, tagID := range req.TagIDs {
			var count int64
			if err := tx.Model(&tag.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
				return fmt.Errorf("查询标签失败: %w", err)
			}
			if count == 0 {
				return common.NewBusinessError(common.CodeTagNotFound, fmt.Sprintf("标签不存在: %s", tagID))
			}
			if err := tx.Create(&tag.PromptTag{PromptID: prompt.ID, TagID: tagID}).Error; err != nil {
				return fmt.Errorf("关联标签失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PromptsCreatedTotal.Inc()

	tags, err := s.loadTags(ctx, prompt.ID)
	if err != nil {
		return nil, err
	}
	return &PromptDetail{
		Prompt:         prompt,
		CurrentVersion: initial,
		Tags:           tags,
		VersionCount:   1,
	}, nil
}

// Get 获取提示词详情（含当前版本与标签）
func (s *PromptService) Get(ctx context.Context, ownerID, promptID string) (*PromptDetail, error) {
	prompt, err := s.getOwned(ctx, ownerID, promptID)
	if err != nil {
		return nil, err
	}

	detail := &PromptDetail{Prompt: prompt}

	current, err := s.versions.GetCurrentVersion(ctx, promptID)
	if err == nil {
		detail.CurrentVersion = current
	} else if _, ok := common.AsBusinessError(err); !ok {
		return nil, err
	}

	if detail.Tags, err = s.loadTags(ctx, promptID); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&PromptVersion{}).
		Where("prompt_id = ?", promptID).
		Count(&detail.VersionCount).Error; err != nil {
		return nil, fmt.Errorf("统计版本数失败: %w", err)
	}

	return detail, nil
}

// ListPromptsRequest 提示词列表查询请求
type ListPromptsRequest struct {
	common.PaginationRequest
	TaskType string `form:"task_type"`
	Domain   string `form:"domain"`
	Keyword  string `form:"keyword"`
	TagID    string `form:"tag_id"`
}

// List 列出当前用户的提示词，按更新时间倒序
func (s *PromptService) List(ctx context.Context, ownerID string, req *ListPromptsRequest) ([]Prompt, int64, error) {
	query := s.DB.WithContext(ctx).Model(&Prompt{}).Where("owner_id = ?", ownerID)

	if req.TaskType != "" {
		query = query.Where("task_type = ?", req.TaskType)
	}
	if req.Domain != "" {
		query = query.Where("domain = ?", req.Domain)
	}
	if req.Keyword != "" {
		query = s.ApplyKeywordSearch(query, req.Keyword, []string{"title", "description"})
	}
	if req.TagID != "" {
		query = query.Where("id IN (?)",
			s.DB.Model(&tag.PromptTag{}).Select("prompt_id").Where("tag_id = ?", req.TagID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计提示词失败: %w", err)
	}

	var prompts []Prompt
	if err := s.ApplyPaginationRequest(query, req.PaginationRequest).
		Order("updated_at DESC").
		Find(&prompts).Error; err != nil {
		return nil, 0, fmt.Errorf("查询提示词列表失败: %w", err)
	}

	return prompts, total, nil
}

// UpdatePromptRequest 更新提示词请求
// 元数据字段使用指针区分"未提供"与"清空"
type UpdatePromptRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
	TaskType     *string `json:"task_type" binding:"omitempty,max=50"`
	Domain       *string `json:"domain" binding:"omitempty,max=50"`
	IsPublic     *bool   `json:"is_public"`
	PromptText   *string `json:"prompt_text"`
	VersionNotes string  `json:"version_notes"`
}

// Update 更新提示词
// 元数据变更不产生版本；prompt_text 与当前版本不同才追加新版本，相同则忽略。
// 元数据写入与版本追加在同一事务内完成，追加失败时元数据一并回滚
func (s *PromptService) Update(ctx context.Context, ownerID, promptID string, req *UpdatePromptRequest) (*PromptDetail, error) {
	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TaskType != nil {
		updates["task_type"] = *req.TaskType
	}
	if req.Domain != nil {
		updates["domain"] = *req.Domain
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	appended := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁兼作归属校验，updated_at 随锁刷新
		if err := lockPromptRow(tx, ownerID, promptID); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&Prompt{}).
				Where("id = ?", promptID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("更新提示词失败: %w", err)
			}
		}

		// 文本有实际变化时走版本账本追加
		if req.PromptText != nil {
			var current PromptVersion
			if err := tx.Where("prompt_id = ? AND is_current = ?", promptID, true).
				First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return common.NewBusinessError(common.CodeVersionNotFound, "当前版本不存在")
				}
				return fmt.Errorf("查询当前版本失败: %w", err)
			}
			if current.PromptText != *req.PromptText {
				if _, err := appendVersionLocked(tx, promptID, *req.PromptText, req.VersionNotes); err != nil {
					return err
				}
				appended = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if appended {
		metrics.VersionsCreatedTotal.Inc()
	}
	return s.Get(ctx, ownerID, promptID)
}

// Delete 删除提示词，级联删除版本、评估记录与标签关联
func (s *PromptService) Delete(ctx context.Context, ownerID, promptID string) error {
	if _, err := s.getOwned(ctx, ownerID, promptID); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version_id IN (?)",
			tx.Model(&PromptVersion{}).Select("id").Where("prompt_id = ?", promptID)).
			Delete(&PromptEvaluation{}).Error; err != nil {
			return fmt.Errorf("删除评估记录失败: %w", err)
		}
		if err := tx.Where("prompt_id = ?", promptID).Delete(&PromptVersion{}).Error; err != nil {
			return fmt.Errorf("删除版本失败: %w", err)
		}
		if err := tx.Where("prompt_id = ?", promptID).Delete(&tag.PromptTag{}).Error; err != nil {
			return fmt.Errorf("删除标签关联失败: %w", err)
		}
		if err := tx.Where("id = ?", promptID).Delete(&Prompt{}).Error; err != nil {
			return fmt.Errorf("删除提示词失败: %w", err)
		}
		return nil
	})
}

// PromptStats 提示词统计
type PromptStats struct {
	TotalPrompts  int64            `json:"total_prompts"`
	TotalVersions int64            `json:"total_versions"`
	ByTaskType    map[string]int64 `json:"by_task_type"`
	ByDomain      map[string]int64 `json:"by_domain"`
	AvgFinalScore float64          `json:"avg_final_score"`
	ActiveTags    int64            `json:"active_tags"`
	Recent        []Prompt         `json:"recent"`
}

// Stats 统计当前用户的提示词概况
func (s *PromptService) Stats(ctx context.Context, ownerID string) (*PromptStats, error) {
	stats := &PromptStats{
		ByTaskType: make(map[string]int64),
		ByDomain:   make(map[string]int64),
	}

	db := s.DB.WithContext(ctx)
	owned := db.Model(&Prompt{}).Where("owner_id = ?", ownerID)

	if err := owned.Session(&gorm.Session{}).Count(&stats.TotalPrompts).Error; err != nil {
		return nil, fmt.Errorf("统计提示词总数失败: %w", err)
	}

	if err := db.Model(&PromptVersion{}).
		Where("prompt_id IN (?)", db.Model(&Prompt{}).Select("id").Where("owner_id = ?", ownerID)).
		Count(&stats.TotalVersions).Error; err != nil {
		return nil, fmt.Errorf("统计版本总数失败: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var taskBuckets []bucket
	if err := db.Model(&Prompt{}).
		Select("task_type AS key, COUNT(*) AS count").
		Where("owner_id = ? AND task_type <> ''", ownerID).
		Group("task_type").
		Scan(&taskBuckets).Error; err != nil {
		return nil, fmt.Errorf("按任务类型统计失败: %w", err)
	}
	for _, b := range taskBuckets {
		stats.ByTaskType[b.Key] = b.Count
	}

	var domainBuckets []bucket
	if err := db.Model(&Prompt{}).
		Select("domain AS key, COUNT(*) AS count").
		Where("owner_id = ? AND domain <> ''", ownerID).
		Group("domain").
		Scan(&domainBuckets).Error; err != nil {
		return nil, fmt.Errorf("按领域统计失败: %w", err)
	}
	for _, b := range domainBuckets {
		stats.ByDomain[b.Key] = b.Count
	}

	var avg sql.NullFloat64
	if err := db.Model(&PromptEvaluation{}).
		Select("AVG(final_score)").
		Joins("JOIN prompt_versions ON prompt_versions.id = prompt_evaluations.version_id").
		Joins("JOIN prompts ON prompts.id = prompt_versions.prompt_id").
		Where("prompts.owner_id = ?", ownerID).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("统计平均分失败: %w", err)
	}
	if avg.Valid {
		stats.AvgFinalScore = avg.Float64
	}

	if err := db.Model(&tag.PromptTag{}).
		Where("prompt_id IN (?)", db.Model(&Prompt{}).Select("id").Where("owner_id = ?", ownerID)).
		Distinct("tag_id").
		Count(&stats.ActiveTags).Error; err != nil {
		return nil, fmt.Errorf("统计活跃标签失败: %w", err)
	}

	if err := db.Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Limit(5).
		Find(&stats.Recent).Error; err != nil {
		return nil, fmt.Errorf("查询最近提示词失败: %w", err)
	}

	return stats, nil
}

// getOwned 获取属于指定用户的提示词
func (s *PromptService) getOwned(ctx context.Context, ownerID, promptID string) (*Prompt, error) {
	var prompt Prompt
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", promptID, ownerID).
		First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodePromptNotFound, "")
		}
		return nil, fmt.Errorf("查询提示词失败: %w", err)
	}
	return &prompt, nil
}

// loadTags 加载提示词关联的标签
func (s *PromptService) loadTags(ctx context.Context, promptID string) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0)
	if err := s.DB.WithContext(ctx).
		Model(&tag.Tag{}).
		Joins("JOIN prompt_tags ON prompt_tags.tag_id = tags.id").
		Where("prompt_tags.prompt_id = ?", promptID).
		Order("tags.name ASC").
		Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return tags, nil
}

package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/metrics"
)

// VersionService 版本账本服务
// 维护两条不变式：任一提示词任意时刻至多一个当前版本；
// 版本号在提示词内严格递增且不重复
type VersionService struct {
	db *gorm.DB
}

// NewVersionService 创建版本服务
func NewVersionService(db *gorm.DB) *VersionService {
	return &VersionService{db: db}
}

// CreateInitialVersion 在事务内创建首个版本（版本号 1，标记为当前）
// 提示词已有版本时返回冲突错误
func (s *VersionService) CreateInitialVersion(tx *gorm.DB, promptID, text string) (*PromptVersion, error) {
	var count int64
	if err := tx.Model(&PromptVersion{}).Where("prompt_id = ?", promptID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("检查版本是否存在失败: %w", err)
	}
	if count > 0 {
		return nil, common.NewBusinessError(common.CodeInitialVersionExists, "")
	}

	version := &PromptVersion{
		PromptID:      promptID,
		VersionNumber: 1,
		PromptText:    text,
		IsCurrent:     true,
	}
	if err := tx.Create(version).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewBusinessError(common.CodeVersionConflict, "")
		}
		return nil, fmt.Errorf("创建初始版本失败: %w", err)
	}

	metrics.VersionsCreatedTotal.Inc()
	return version, nil
}

// AppendVersion 追加新版本并将其设为当前版本
// 新版本号 = 现有最大版本号 + 1；整个变更在提示词行锁内完成，
// (prompt_id, version_number) 唯一索引兜底，冲突时返回冲突错误由调用方重试
func (s *VersionService) AppendVersion(ctx context.Context, ownerID, promptID, text, notes string) (*PromptVersion, error) {
	var version *PromptVersion

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPromptRow(tx, ownerID, promptID); err != nil {
			return err
		}

		v, err := appendVersionLocked(tx, promptID, text, notes)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VersionsCreatedTotal.Inc()
	return version, nil
}

// SetCurrent 将指定版本设为当前版本
// 在提示词行锁内先清除兄弟版本的标记再设置目标版本，保证至多一个当前版本
func (s *VersionService) SetCurrent(ctx context.Context, ownerID, versionID string) (*PromptVersion, error) {
	var version PromptVersion

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		located, err := versionOwnedBy(tx, ownerID, versionID)
		if err != nil {
			return err
		}
		if err := lockPromptRow(tx, ownerID, located.PromptID); err != nil {
			return err
		}

		// 加锁后重读，避免依据并发事务提交前的旧状态做判断
		if err := tx.Where("id = ?", versionID).First(&version).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NewBusinessError(common.CodeVersionNotFound, "")
			}
			return fmt.Errorf("查询版本失败: %w", err)
		}

		if err := tx.Model(&PromptVersion{}).
			Where("prompt_id = ? AND is_current = ?", version.PromptID, true).
			Update("is_current", false).Error; err != nil {
			return fmt.Errorf("清除当前版本标记失败: %w", err)
		}

		if err := tx.Model(&PromptVersion{}).
			Where("id = ?", versionID).
			Update("is_current", true).Error; err != nil {
			return fmt.Errorf("设置当前版本失败: %w", err)
		}
		version.IsCurrent = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &version, nil
}

// DeleteVersion 删除指定版本
// 唯一版本不可删除；删除的是当前版本时，在同一事务内把剩余最大版本号提升为当前版本
func (s *VersionService) DeleteVersion(ctx context.Context, ownerID, versionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		located, err := versionOwnedBy(tx, ownerID, versionID)
		if err != nil {
			return err
		}
		if err := lockPromptRow(tx, ownerID, located.PromptID); err != nil {
			return err
		}

		// 加锁后重读，唯一版本的判断必须基于锁内的最新状态
		var version PromptVersion
		if err := tx.Where("id = ?", versionID).First(&version).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NewBusinessError(common.CodeVersionNotFound, "")
			}
			return fmt.Errorf("查询版本失败: %w", err)
		}

		var total int64
		if err := tx.Model(&PromptVersion{}).Where("prompt_id = ?", version.PromptID).Count(&total).Error; err != nil {
			return fmt.Errorf("统计版本数失败: %w", err)
		}
		if total <= 1 {
			return common.NewBusinessError(common.CodeSoleVersionDelete, "")
		}

		// 级联删除该版本的评估记录
		if err := tx.Where("version_id = ?", versionID).Delete(&PromptEvaluation{}).Error; err != nil {
			return fmt.Errorf("删除版本评估记录失败: %w", err)
		}

		if err := tx.Delete(&version).Error; err != nil {
			return fmt.Errorf("删除版本失败: %w", err)
		}

		// 删除的是当前版本时提升剩余最大版本号
		if version.IsCurrent {
			var successor PromptVersion
			if err := tx.Where("prompt_id = ?", version.PromptID).
				Order("version_number DESC").
				First(&successor).Error; err != nil {
				return fmt.Errorf("查询接替版本失败: %w", err)
			}
			if err := tx.Model(&PromptVersion{}).
				Where("id = ?", successor.ID).
				Update("is_current", true).Error; err != nil {
				return fmt.Errorf("提升接替版本失败: %w", err)
			}
		}

		return nil
	})
}

// GetVersion 获取单个版本，只能访问自己提示词下的版本
func (s *VersionService) GetVersion(ctx context.Context, ownerID, versionID string) (*PromptVersion, error) {
	return versionOwnedBy(s.db.WithContext(ctx), ownerID, versionID)
}

// GetCurrentVersion 获取提示词的当前版本
// 调用方负责归属校验
func (s *VersionService) GetCurrentVersion(ctx context.Context, promptID string) (*PromptVersion, error) {
	var version PromptVersion
	if err := s.db.WithContext(ctx).
		Where("prompt_id = ? AND is_current = ?", promptID, true).
		First(&version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeVersionNotFound, "当前版本不存在")
		}
		return nil, fmt.Errorf("查询当前版本失败: %w", err)
	}
	return &version, nil
}

// ListVersions 按版本号倒序列出提示词的所有版本
func (s *VersionService) ListVersions(ctx context.Context, ownerID, promptID string) ([]PromptVersion, error) {
	if err := promptOwnedBy(s.db.WithContext(ctx), ownerID, promptID); err != nil {
		return nil, err
	}

	var versions []PromptVersion
	if err := s.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("查询版本列表失败: %w", err)
	}
	return versions, nil
}

// ============================================================================
// 版本对比
// ============================================================================

// VersionDiff 两个版本的对比结果
type VersionDiff struct {
	Version1     *PromptVersion `json:"version1"`
	Version2     *PromptVersion `json:"version2"`
	UnifiedDiff  string         `json:"unified_diff"`
	WordsAdded   int            `json:"words_added"`
	WordsRemoved int            `json:"words_removed"`
	WordCount1   int            `json:"word_count_1"`
	WordCount2   int            `json:"word_count_2"`
}

// CompareVersions 对比同一提示词的两个版本
// 跨提示词对比视为参数错误
func (s *VersionService) CompareVersions(ctx context.Context, ownerID, versionID1, versionID2 string) (*VersionDiff, error) {
	v1, err := s.GetVersion(ctx, ownerID, versionID1)
	if err != nil {
		return nil, err
	}
	v2, err := s.GetVersion(ctx, ownerID, versionID2)
	if err != nil {
		return nil, err
	}

	if v1.PromptID != v2.PromptID {
		return nil, common.NewBusinessError(common.CodeVersionCrossPrompt, "")
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(v1.PromptText),
		B:        difflib.SplitLines(v2.PromptText),
		FromFile: fmt.Sprintf("v%d", v1.VersionNumber),
		ToFile:   fmt.Sprintf("v%d", v2.VersionNumber),
		Context:  3,
	}
	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("生成版本差异失败: %w", err)
	}

	added, removed := wordLevelDiff(v1.PromptText, v2.PromptText)

	return &VersionDiff{
		Version1:     v1,
		Version2:     v2,
		UnifiedDiff:  unified,
		WordsAdded:   added,
		WordsRemoved: removed,
		WordCount1:   len(strings.Fields(v1.PromptText)),
		WordCount2:   len(strings.Fields(v2.PromptText)),
	}, nil
}

// wordLevelDiff 统计单词级别的增删数量
func wordLevelDiff(text1, text2 string) (added, removed int) {
	words1 := strings.Fields(text1)
	words2 := strings.Fields(text2)

	matcher := difflib.NewMatcher(words1, words2)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'i':
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		case 'r':
			added += op.J2 - op.J1
			removed += op.I2 - op.I1
		}
	}
	return added, removed
}

// ============================================================================
// 账本写入的互斥与归属校验
// ============================================================================

// lockPromptRow 锁定提示词行并刷新更新时间
// 账本的每个写事务都从这里开始：postgres 的行级写锁把同一提示词上
// "清除旧当前标记、写入新标记"的序列串行化，保证任意时刻至多一个当前版本；
// 未命中任何行说明提示词不存在或不属于该用户
func lockPromptRow(tx *gorm.DB, ownerID, promptID string) error {
	res := tx.Model(&Prompt{}).
		Where("id = ? AND owner_id = ?", promptID, ownerID).
		Update("updated_at", time.Now().UTC())
	if res.Error != nil {
		return fmt.Errorf("锁定提示词失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NewBusinessError(common.CodePromptNotFound, "")
	}
	return nil
}

// appendVersionLocked 在已持有提示词行锁的事务内追加版本
// 唯一索引兜底锁之外的写入路径，冲突时返回冲突错误
func appendVersionLocked(tx *gorm.DB, promptID, text, notes string) (*PromptVersion, error) {
	var maxNumber int
	if err := tx.Model(&PromptVersion{}).
		Where("prompt_id = ?", promptID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return nil, fmt.Errorf("查询最大版本号失败: %w", err)
	}

	if err := tx.Model(&PromptVersion{}).
		Where("prompt_id = ? AND is_current = ?", promptID, true).
		Update("is_current", false).Error; err != nil {
		return nil, fmt.Errorf("清除当前版本标记失败: %w", err)
	}

	version := &PromptVersion{
		PromptID:      promptID,
		VersionNumber: maxNumber + 1,
		PromptText:    text,
		Notes:         notes,
		IsCurrent:     true,
	}
	if err := tx.Create(version).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewBusinessError(common.CodeVersionConflict, "")
		}
		return nil, fmt.Errorf("创建版本失败: %w", err)
	}
	return version, nil
}

// promptOwnedBy 确认提示词存在且属于指定用户
func promptOwnedBy(db *gorm.DB, ownerID, promptID string) error {
	var count int64
	if err := db.Model(&Prompt{}).
		Where("id = ? AND owner_id = ?", promptID, ownerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("查询提示词失败: %w", err)
	}
	if count == 0 {
		return common.NewBusinessError(common.CodePromptNotFound, "")
	}
	return nil
}

// versionOwnedBy 查询属于指定用户的版本
// 版本不存在或其提示词属于他人时统一返回未找到，不泄露他人资源的存在性
func versionOwnedBy(db *gorm.DB, ownerID, versionID string) (*PromptVersion, error) {
	var version PromptVersion
	err := db.Model(&PromptVersion{}).
		Joins("JOIN prompts ON prompts.id = prompt_versions.prompt_id").
		Where("prompt_versions.id = ? AND prompts.owner_id = ?", versionID, ownerID).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessError(common.CodeVersionNotFound, "")
		}
		return nil, fmt.Errorf("查询版本失败: %w", err)
	}
	return &version, nil
}

// isUniqueViolation 判断是否唯一约束冲突
// postgres 与 sqlite 的驱动错误文本不同，这里按关键字判断
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

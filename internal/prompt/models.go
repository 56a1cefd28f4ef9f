package prompt

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prompt 提示词主记录
// 当前文本永远以版本账本中 is_current 的那条为准，Prompt 本身不冗余存储文本
type Prompt struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     string    `gorm:"type:uuid;not null;index:idx_prompt_owner" json:"owner_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	TaskType    string    `gorm:"size:50;index:idx_prompt_task_type" json:"task_type"`
	Domain      string    `gorm:"size:50;index:idx_prompt_domain" json:"domain"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	Versions []PromptVersion `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// BeforeCreate 设置默认 ID 与时间戳
func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

// BeforeUpdate 更新时间戳
func (p *Prompt) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// PromptVersion 提示词版本账本条目
// (prompt_id, version_number) 唯一索引保证版本号不重复；
// 版本文本一旦写入不可修改，只能追加新版本
type PromptVersion struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	PromptID      string    `gorm:"type:uuid;not null;index:idx_version_prompt;uniqueIndex:uniq_prompt_version_number" json:"prompt_id"`
	VersionNumber int       `gorm:"not null;uniqueIndex:uniq_prompt_version_number" json:"version_number"`
	PromptText    string    `gorm:"type:text;not null" json:"prompt_text"`
	Notes         string    `gorm:"type:text" json:"notes"`
	IsCurrent     bool      `gorm:"not null;default:false;index:idx_version_current" json:"is_current"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`

	Evaluations []PromptEvaluation `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"evaluations,omitempty"`
}

// BeforeCreate 设置默认 ID 与时间戳
func (v *PromptVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	return nil
}

// PromptEvaluation 评估记录，追加式缓存
// 同一版本可被多次评估，最新一次（evaluated_at 最大）为权威结果
type PromptEvaluation struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	VersionID      string    `gorm:"type:uuid;not null;index:idx_evaluation_version" json:"version_id"`
	ClarityScore   float64   `gorm:"not null" json:"clarity_score"`
	RelevanceScore float64   `gorm:"not null" json:"relevance_score"`
	LengthScore    float64   `gorm:"not null" json:"length_score"`
	FinalScore     float64   `gorm:"not null;index:idx_evaluation_final" json:"final_score"`
	Notes          string    `gorm:"type:text" json:"evaluation_notes"`
	EvaluatedAt    time.Time `gorm:"not null;index:idx_evaluation_time" json:"evaluated_at"`
}

// BeforeCreate 设置默认 ID 与评估时间
func (e *PromptEvaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	return nil
}

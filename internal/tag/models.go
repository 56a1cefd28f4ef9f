package tag

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag 标签，名称全局唯一
type Tag struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:uniq_tag_name" json:"name"`
	Color       string    `gorm:"size:20" json:"color"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate 设置默认 ID 与时间戳
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	return nil
}

// BeforeUpdate 更新时间戳
func (t *Tag) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// PromptTag 提示词与标签的关联
// (prompt_id, tag_id) 唯一索引保证同一组合只存在一条关联
type PromptTag struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PromptID  string    `gorm:"type:uuid;not null;uniqueIndex:uniq_prompt_tag;index:idx_prompt_tag_prompt" json:"prompt_id"`
	TagID     string    `gorm:"type:uuid;not null;uniqueIndex:uniq_prompt_tag;index:idx_prompt_tag_tag" json:"tag_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate 设置默认 ID 与时间戳
func (pt *PromptTag) BeforeCreate(tx *gorm.DB) error {
	if pt.ID == "" {
		pt.ID = uuid.New().String()
	}
	if pt.CreatedAt.IsZero() {
		pt.CreatedAt = time.Now().UTC()
	}
	return nil
}

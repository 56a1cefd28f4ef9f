package prompt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend/internal/logger"
	"backend/internal/tag"
	"backend/internal/user"
)

func init() {
	// 评估服务在批量失败时会写日志
	_ = logger.Init("error", "console", "stdout")
}

// initTestDB 创建内存数据库用于测试
func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:prompt_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "打开内存数据库失败")

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&Prompt{},
		&PromptVersion{},
		&PromptEvaluation{},
		&tag.Tag{},
		&tag.PromptTag{},
	), "迁移测试表失败")

	return db
}

// seizeNextVersionNumber 注册一个写入前回调：第一次向账本追加版本时，
// 在同一事务内抢先插入相同 (prompt_id, version_number) 的行，模拟并发写入者先行提交
func seizeNextVersionNumber(t *testing.T, db *gorm.DB) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("seize_next_version", func(tx *gorm.DB) {
		v, ok := tx.Statement.Dest.(*PromptVersion)
		if !ok || fired || v.VersionNumber < 2 {
			return
		}
		fired = true
		res := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO prompt_versions (id, prompt_id, version_number, prompt_text, notes, is_current, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			"rival-"+v.PromptID, v.PromptID, v.VersionNumber, "rival copy", "", false, time.Now().UTC(),
		)
		if res.Error != nil {
			_ = tx.AddError(res.Error)
		}
	})
	require.NoError(t, err)
}

// createTestPrompt 创建带初始版本的测试提示词
func createTestPrompt(t *testing.T, db *gorm.DB, ownerID, text string) *PromptDetail {
	t.Helper()
	svc := NewPromptService(db, NewVersionService(db))
	detail, err := svc.Create(context.Background(), ownerID, &CreatePromptRequest{
		Title:      "测试提示词",
		TaskType:   "generation",
		Domain:     "coding",
		PromptText: text,
	})
	require.NoError(t, err)
	return detail
}

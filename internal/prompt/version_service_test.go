package prompt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/common"
)

func TestVersionLedgerInvariants(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "write a function to parse json")
	promptID := detail.Prompt.ID

	t.Run("初始版本为1且为当前版本", func(t *testing.T) {
		require.NotNil(t, detail.CurrentVersion)
		assert.Equal(t, 1, detail.CurrentVersion.VersionNumber)
		assert.True(t, detail.CurrentVersion.IsCurrent)
	})

	t.Run("重复创建初始版本返回冲突", func(t *testing.T) {
		_, err := svc.CreateInitialVersion(db, promptID, "again")
		require.Error(t, err)
		assert.True(t, common.IsConflict(err))
	})

	t.Run("追加版本号严格递增且成为当前版本", func(t *testing.T) {
		v2, err := svc.AppendVersion(ctx, "owner-1", promptID, "write a go function to parse json", "clarify language")
		require.NoError(t, err)
		assert.Equal(t, 2, v2.VersionNumber)
		assert.True(t, v2.IsCurrent)

		v3, err := svc.AppendVersion(ctx, "owner-1", promptID, "write a go function to parse json with tests", "")
		require.NoError(t, err)
		assert.Equal(t, 3, v3.VersionNumber)

		// 任意时刻只有一个当前版本
		var currentCount int64
		require.NoError(t, db.Model(&PromptVersion{}).
			Where("prompt_id = ? AND is_current = ?", promptID, true).
			Count(&currentCount).Error)
		assert.Equal(t, int64(1), currentCount)
	})

	t.Run("版本列表按版本号倒序", func(t *testing.T) {
		versions, err := svc.ListVersions(ctx, "owner-1", promptID)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, 3, versions[0].VersionNumber)
		assert.Equal(t, 1, versions[2].VersionNumber)
	})

	t.Run("切换当前版本清除兄弟标记", func(t *testing.T) {
		versions, err := svc.ListVersions(ctx, "owner-1", promptID)
		require.NoError(t, err)
		v1 := versions[2]

		switched, err := svc.SetCurrent(ctx, "owner-1", v1.ID)
		require.NoError(t, err)
		assert.True(t, switched.IsCurrent)

		var currentCount int64
		require.NoError(t, db.Model(&PromptVersion{}).
			Where("prompt_id = ? AND is_current = ?", promptID, true).
			Count(&currentCount).Error)
		assert.Equal(t, int64(1), currentCount)

		current, err := svc.GetCurrentVersion(ctx, promptID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.VersionNumber)
	})

	t.Run("删除当前版本提升剩余最大版本号", func(t *testing.T) {
		current, err := svc.GetCurrentVersion(ctx, promptID)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteVersion(ctx, "owner-1", current.ID))

		promoted, err := svc.GetCurrentVersion(ctx, promptID)
		require.NoError(t, err)
		assert.Equal(t, 3, promoted.VersionNumber)
	})

	t.Run("不存在的版本返回未找到", func(t *testing.T) {
		_, err := svc.SetCurrent(ctx, "owner-1", "no-such-id")
		assert.True(t, common.IsNotFound(err))

		err = svc.DeleteVersion(ctx, "owner-1", "no-such-id")
		assert.True(t, common.IsNotFound(err))

		_, err = svc.GetVersion(ctx, "owner-1", "no-such-id")
		assert.True(t, common.IsNotFound(err))
	})
}

func TestAppendVersionNumberTaken(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "first draft")
	promptID := detail.Prompt.ID

	// 版本号被并发写入者抢先占用时，唯一索引兜底并映射为冲突错误
	seizeNextVersionNumber(t, db)

	_, err := svc.AppendVersion(ctx, "owner-1", promptID, "second draft", "")
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))
	be, ok := common.AsBusinessError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeVersionConflict, be.Code)

	// 事务整体回滚，账本里既没有新版本也没有抢占行
	var count int64
	require.NoError(t, db.Model(&PromptVersion{}).Where("prompt_id = ?", promptID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	current, err := svc.GetCurrentVersion(ctx, promptID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.VersionNumber, "冲突回滚后当前版本标记保持不变")
}

func TestVersionOperationsScopedToOwner(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "mine only")
	promptID := detail.Prompt.ID
	versionID := detail.CurrentVersion.ID
	v2, err := svc.AppendVersion(ctx, "owner-1", promptID, "mine revised", "")
	require.NoError(t, err)

	t.Run("他人无法读取", func(t *testing.T) {
		_, err := svc.GetVersion(ctx, "owner-2", versionID)
		assert.True(t, common.IsNotFound(err))

		_, err = svc.ListVersions(ctx, "owner-2", promptID)
		assert.True(t, common.IsNotFound(err))

		_, err = svc.CompareVersions(ctx, "owner-2", versionID, v2.ID)
		assert.True(t, common.IsNotFound(err))
	})

	t.Run("他人无法写入", func(t *testing.T) {
		_, err := svc.AppendVersion(ctx, "owner-2", promptID, "hijacked", "")
		assert.True(t, common.IsNotFound(err))

		_, err = svc.SetCurrent(ctx, "owner-2", versionID)
		assert.True(t, common.IsNotFound(err))

		err = svc.DeleteVersion(ctx, "owner-2", v2.ID)
		assert.True(t, common.IsNotFound(err))

		var count int64
		require.NoError(t, db.Model(&PromptVersion{}).Where("prompt_id = ?", promptID).Count(&count).Error)
		assert.Equal(t, int64(2), count, "他人的操作不应改变账本")
	})
}

func TestLedgerMutationsLockPromptRow(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "version one")
	promptID := detail.Prompt.ID
	_, err := svc.AppendVersion(ctx, "owner-1", promptID, "version two", "")
	require.NoError(t, err)

	readUpdatedAt := func() time.Time {
		var p Prompt
		require.NoError(t, db.Where("id = ?", promptID).First(&p).Error)
		return p.UpdatedAt
	}

	before := readUpdatedAt()
	time.Sleep(5 * time.Millisecond)

	versions, err := svc.ListVersions(ctx, "owner-1", promptID)
	require.NoError(t, err)

	// 切换与删除都必须先经过提示词行锁，锁的副作用是刷新 updated_at
	_, err = svc.SetCurrent(ctx, "owner-1", versions[1].ID)
	require.NoError(t, err)
	afterSet := readUpdatedAt()
	assert.True(t, afterSet.After(before), "切换当前版本应刷新提示词 updated_at")

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.DeleteVersion(ctx, "owner-1", versions[0].ID))
	assert.True(t, readUpdatedAt().After(afterSet), "删除版本应刷新提示词 updated_at")
}

func TestDeleteSoleVersionRejected(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "only one version here")

	err := svc.DeleteVersion(ctx, "owner-1", detail.CurrentVersion.ID)
	require.Error(t, err)
	assert.True(t, common.IsConflict(err))

	// 提示词仍有版本
	versions, err := svc.ListVersions(ctx, "owner-1", detail.Prompt.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestAppendVersionUnknownPrompt(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)

	_, err := svc.AppendVersion(context.Background(), "owner-1", "no-such-prompt", "text", "")
	assert.True(t, common.IsNotFound(err))
}

func TestCompareVersions(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "summarize the report")
	v2, err := svc.AppendVersion(ctx, "owner-1", detail.Prompt.ID, "summarize the quarterly report in bullet points", "")
	require.NoError(t, err)

	t.Run("同一提示词可对比", func(t *testing.T) {
		diff, err := svc.CompareVersions(ctx, "owner-1", detail.CurrentVersion.ID, v2.ID)
		require.NoError(t, err)
		assert.Contains(t, diff.UnifiedDiff, "v1")
		assert.Contains(t, diff.UnifiedDiff, "v2")
		assert.Greater(t, diff.WordsAdded, 0)
		assert.Equal(t, 3, diff.WordCount1)
		assert.Equal(t, 7, diff.WordCount2)
	})

	t.Run("跨提示词对比被拒绝", func(t *testing.T) {
		other := createTestPrompt(t, db, "owner-1", "another prompt entirely")
		_, err := svc.CompareVersions(ctx, "owner-1", detail.CurrentVersion.ID, other.CurrentVersion.ID)
		require.Error(t, err)
		be, ok := common.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, common.CodeVersionCrossPrompt, be.Code)
	})
}

func TestVersionTextImmutableAcrossAppends(t *testing.T) {
	db := initTestDB(t)
	svc := NewVersionService(db)
	ctx := context.Background()

	detail := createTestPrompt(t, db, "owner-1", "original text")
	_, err := svc.AppendVersion(ctx, "owner-1", detail.Prompt.ID, "revised text", "")
	require.NoError(t, err)

	v1, err := svc.GetVersion(ctx, "owner-1", detail.CurrentVersion.ID)
	require.NoError(t, err)
	assert.Equal(t, "original text", v1.PromptText)
	assert.False(t, v1.IsCurrent, "追加后旧版本不再是当前版本")
	assert.True(t, strings.HasPrefix(v1.PromptText, "original"))
}

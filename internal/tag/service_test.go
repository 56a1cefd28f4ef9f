package tag

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"backend/internal/common"
)

// initTestDB 创建内存数据库用于测试
func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:tag_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, db.AutoMigrate(&Tag{}, &PromptTag{}), "迁移测试表失败")
	return db
}

func TestCreateTag(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	t.Run("正常创建", func(t *testing.T) {
		created, err := svc.Create(ctx, &CreateTagRequest{Name: "backend", Color: "#3366ff"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "backend", created.Name)
	})

	t.Run("重名返回冲突", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateTagRequest{Name: "backend"})
		require.Error(t, err)
		assert.True(t, common.IsConflict(err))
	})

	t.Run("空白名称拒绝", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateTagRequest{Name: "   "})
		require.Error(t, err)
		be, ok := common.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, common.CodeInvalidRequest, be.Code)
	})
}

func TestUpdateTag(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, &CreateTagRequest{Name: "alpha"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreateTagRequest{Name: "beta"})
	require.NoError(t, err)

	strPtr := func(s string) *string { return &s }

	t.Run("正常改名", func(t *testing.T) {
		updated, err := svc.Update(ctx, first.ID, &UpdateTagRequest{Name: strPtr("gamma")})
		require.NoError(t, err)
		assert.Equal(t, "gamma", updated.Name)
	})

	t.Run("改名撞已有名称返回冲突", func(t *testing.T) {
		_, err := svc.Update(ctx, second.ID, &UpdateTagRequest{Name: strPtr("gamma")})
		require.Error(t, err)
		assert.True(t, common.IsConflict(err))
	})

	t.Run("不存在的标签返回未找到", func(t *testing.T) {
		_, err := svc.Update(ctx, "no-such-tag", &UpdateTagRequest{Name: strPtr("x")})
		assert.True(t, common.IsNotFound(err))
	})
}

func TestAttachIdempotent(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateTagRequest{Name: "idempotent"})
	require.NoError(t, err)

	require.NoError(t, svc.Attach(ctx, "prompt-1", created.ID))

	// 重复关联是成功的空操作
	require.NoError(t, svc.Attach(ctx, "prompt-1", created.ID))

	var count int64
	require.NoError(t, db.Model(&PromptTag{}).
		Where("prompt_id = ? AND tag_id = ?", "prompt-1", created.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "重复关联不应产生新记录")
}

func TestAttachUnknownTag(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)

	err := svc.Attach(context.Background(), "prompt-1", "no-such-tag")
	assert.True(t, common.IsNotFound(err))
}

func TestDetach(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateTagRequest{Name: "detach"})
	require.NoError(t, err)
	require.NoError(t, svc.Attach(ctx, "prompt-1", created.ID))

	t.Run("正常移除", func(t *testing.T) {
		require.NoError(t, svc.Detach(ctx, "prompt-1", created.ID))
	})

	t.Run("关联不存在返回未找到", func(t *testing.T) {
		err := svc.Detach(ctx, "prompt-1", created.ID)
		require.Error(t, err)
		assert.True(t, common.IsNotFound(err))
	})
}

func TestListWithCounts(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	zebra, err := svc.Create(ctx, &CreateTagRequest{Name: "zebra"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateTagRequest{Name: "apple"})
	require.NoError(t, err)

	require.NoError(t, svc.Attach(ctx, "prompt-1", zebra.ID))
	require.NoError(t, svc.Attach(ctx, "prompt-2", zebra.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// 名称升序
	assert.Equal(t, "apple", list[0].Name)
	assert.Equal(t, "zebra", list[1].Name)
	assert.Equal(t, int64(0), list[0].PromptCount)
	assert.Equal(t, int64(2), list[1].PromptCount)
}

func TestDeleteTagRemovesAssociations(t *testing.T) {
	db := initTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateTagRequest{Name: "doomed"})
	require.NoError(t, err)
	require.NoError(t, svc.Attach(ctx, "prompt-1", created.ID))

	require.NoError(t, svc.Delete(ctx, created.ID))

	var links int64
	require.NoError(t, db.Model(&PromptTag{}).Where("tag_id = ?", created.ID).Count(&links).Error)
	assert.Zero(t, links)

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, common.IsNotFound(err))
}

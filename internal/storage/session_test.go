package storage

import (
	"context"
	"testing"
	"time"

	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound, "不存在的会话应返回ErrSessionNotFound")

	session := NewSession("sid-1")
	session.Record = types.NewEmptyResumeRecord()
	session.Record.PersonalInfo.Name = "John Smith"
	session.AddFlash("warning", "No text could be extracted")
	require.NoError(t, store.Save(ctx, session, time.Minute))

	loaded, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.True(t, loaded.HasRecord(), "应保存解析结果")
	assert.Equal(t, "John Smith", loaded.Record.PersonalInfo.Name)
	require.Len(t, loaded.Flashes, 1)
	assert.Equal(t, Flash{Category: "warning", Message: "No text could be extracted"}, loaded.Flashes[0])

	// 修改读取到的副本不影响存储内容
	loaded.PopFlashes()
	again, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Len(t, again.Flashes, 1, "未保存前存储中的flash不应被消费")
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, NewSession("short"), time.Minute))
	require.NoError(t, store.Save(ctx, NewSession("forever"), 0))
	assert.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound, "过期会话应视为不存在")
	assert.Equal(t, 1, store.Len(), "过期会话读取时应被清理")

	_, err = store.Get(ctx, "forever")
	assert.NoError(t, err, "ttl<=0 的会话不应过期")
}

func TestMemorySessionStore_DeleteAndValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	assert.Error(t, store.Save(ctx, nil, time.Minute), "nil会话应报错")
	assert.Error(t, store.Save(ctx, &Session{}, time.Minute), "缺少ID应报错")

	require.NoError(t, store.Save(ctx, NewSession("sid"), time.Minute))
	require.NoError(t, store.Delete(ctx, "sid"))
	require.NoError(t, store.Delete(ctx, "sid"), "重复删除不应报错")

	_, err := store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_PopFlashes(t *testing.T) {
	session := NewSession("sid")
	assert.False(t, session.HasRecord())
	assert.Empty(t, session.PopFlashes())

	session.AddFlash("danger", "No file part")
	session.AddFlash("danger", "No selected file")
	flashes := session.PopFlashes()
	assert.Len(t, flashes, 2)
	assert.Equal(t, "No file part", flashes[0].Message, "应保持添加顺序")
	assert.Empty(t, session.Flashes, "取出后应清空")
}

func TestFormatKeyAndScope(t *testing.T) {
	assert.Equal(t, "resume:session:data:abc:sid", FormatKey("resume:session:data:%s:%s", "abc", "sid"))
	assert.Equal(t, "resume:parse:dedup_set", FormatKey("resume:parse:dedup_set"))

	assert.Equal(t, "default", sessionScope(""))
	scope := sessionScope("dev_secret_key")
	assert.Len(t, scope, 12)
	assert.NotContains(t, scope, "secret", "作用域不应包含密钥原文")
	assert.Equal(t, scope, sessionScope("dev_secret_key"), "同一密钥应得到同一作用域")
}

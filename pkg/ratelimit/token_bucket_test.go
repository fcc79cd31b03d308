package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := newTokenBucketAt(60, 2, start) // 每秒一个令牌

	assert.True(t, tb.allowAt(start))
	assert.True(t, tb.allowAt(start))
	assert.False(t, tb.allowAt(start), "突发容量用尽后应被拒绝")

	assert.False(t, tb.allowAt(start.Add(500*time.Millisecond)))
	assert.True(t, tb.allowAt(start.Add(1500*time.Millisecond)), "补充令牌后应放行")
}

func TestTokenBucket_DefaultCapacity(t *testing.T) {
	tb := NewTokenBucket(1, 0)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "容量至少为1")
	assert.Greater(t, tb.RetryAfter(), time.Duration(0))
}

func TestKeyedLimiter_SeparateKeysAndCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewKeyedLimiter(60, 1)
	l.now = func() time.Time { return now }
	l.lastCleanup = now

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "不同客户端互不影响")
	assert.Equal(t, 2, l.Len())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("10.0.0.3"))
	assert.Equal(t, 1, l.Len(), "已回满的桶应被回收")
}

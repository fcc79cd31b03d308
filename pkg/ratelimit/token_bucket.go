package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket 实现令牌桶算法的限流器
type TokenBucket struct {
	rate           float64   // 每秒生成的令牌数
	capacity       float64   // 桶的容量
	tokens         float64   // 当前令牌数
	lastRefillTime time.Time // 上次填充令牌的时间
	mutex          sync.Mutex
}

// NewTokenBucket 创建一个新的令牌桶限流器
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	return newTokenBucketAt(qpm, capacity, time.Now())
}

func newTokenBucketAt(qpm int, capacity int, now time.Time) *TokenBucket {
	// 如果未指定容量，设置为QPM的一半
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	return &TokenBucket{
		rate:           float64(qpm) / 60.0, // 转换为每秒速率
		capacity:       float64(capacity),
		tokens:         float64(capacity), // 初始填满
		lastRefillTime: now,
	}
}

// refill 根据经过的时间填充令牌，调用方持有锁
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.lastRefillTime = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 判断是否允许通过一个请求，消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill(now)
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter 距离下一个令牌可用还需等待的时间
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1.0 || tb.rate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
}

// full 桶是否已回满，回满的桶可以回收
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill(now)
	return tb.tokens >= tb.capacity
}

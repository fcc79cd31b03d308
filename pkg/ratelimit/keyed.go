package ratelimit

import (
	"sync"
	"time"
)

// KeyedLimiter 按键（通常是客户端IP）分别限流
type KeyedLimiter struct {
	qpm      int
	capacity int

	mu          sync.Mutex
	buckets     map[string]*TokenBucket
	lastCleanup time.Time
	now         func() time.Time
}

// cleanupInterval 回收已回满的桶的间隔
const cleanupInterval = time.Minute

// NewKeyedLimiter 创建按键限流器，qpm 为每个键每分钟的请求数
func NewKeyedLimiter(qpm, capacity int) *KeyedLimiter {
	return &KeyedLimiter{
		qpm:         qpm,
		capacity:    capacity,
		buckets:     make(map[string]*TokenBucket),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow 判断该键是否还有可用令牌
func (l *KeyedLimiter) Allow(key string) bool {
	return l.bucket(key).allowAt(l.now())
}

// RetryAfter 该键下一个令牌可用前的等待时间
func (l *KeyedLimiter) RetryAfter(key string) time.Duration {
	return l.bucket(key).RetryAfter()
}

// Len 当前跟踪的键数量
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) bucket(key string) *TokenBucket {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= cleanupInterval {
		for k, b := range l.buckets {
			if b.full(now) {
				delete(l.buckets, k)
			}
		}
		l.lastCleanup = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = newTokenBucketAt(l.qpm, l.capacity, now)
		l.buckets[key] = b
	}
	return b
}

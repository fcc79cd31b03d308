package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"resume-parser-go/internal/types"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Flash 一次性提示消息，下次渲染页面时被消费
type Flash struct {
	Category string `json:"category"` // danger, warning, success
	Message  string `json:"message"`
}

// Session 单个浏览器会话保存的数据
type Session struct {
	ID         string              `json:"id"`
	Record     *types.ResumeRecord `json:"resume_data,omitempty"`
	FileName   string              `json:"file_name,omitempty"`
	FileMD5    string              `json:"file_md5,omitempty"`
	Flashes    []Flash             `json:"flashes,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	ParseCount int                 `json:"parse_count"`
}

// NewSession 创建一个空会话
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AddFlash 追加一条提示消息
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes 取出并清空所有提示消息
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// HasRecord 会话中是否已有解析结果
func (s *Session) HasRecord() bool {
	return s != nil && s.Record != nil
}

// SessionStore 会话存储接口
type SessionStore interface {
	// Get 读取会话，不存在时返回 ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)
	// Save 保存会话并刷新有效期
	Save(ctx context.Context, session *Session, ttl time.Duration) error
	// Delete 删除会话
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemorySessionStore 进程内会话存储，未配置Redis时使用
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Get 读取会话，过期的会话视为不存在
func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	session.Flashes = append([]Flash(nil), entry.session.Flashes...)
	return &session, nil
}

// Save 保存会话副本，ttl<=0 表示永不过期
func (m *MemorySessionStore) Save(_ context.Context, session *Session, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := memoryEntry{session: *session}
	entry.session.UpdatedAt = now
	entry.session.Flashes = append([]Flash(nil), session.Flashes...)
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.sessions[session.ID] = entry
	return nil
}

// Delete 删除会话，不存在时不报错
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len 返回当前保存的会话数（含未清理的过期会话）
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

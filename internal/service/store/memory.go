package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"frachtrechner/internal/model"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Session 一次上传对应的会话，Tables 加载后只读
type Session struct {
	ID         string
	FileName   string
	Tables     *model.Tables
	CreatedAt  time.Time
	LastAccess time.Time
}

// MemoryStore 内存会话存储
type MemoryStore struct {
	sessions    map[string]*Session
	ttl         time.Duration // 0 表示不过期
	maxSessions int           // 0 表示不限制
	now         func() time.Time
	mu          sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Put 保存新上传的参考表，返回新会话
func (s *MemoryStore) Put(fileName string, tables *model.Tables) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}

	session := &Session{
		ID:         uuid.New().String(),
		FileName:   fileName,
		Tables:     tables,
		CreatedAt:  now,
		LastAccess: now,
	}
	s.sessions[session.ID] = session
	return session
}

// Get 获取会话并刷新访问时间
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(session, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	session.LastAccess = now
	return session, nil
}

// Delete 删除会话
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// PurgeExpired 清理过期会话，返回清理数量
func (s *MemoryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(s.now())
}

// Count 获取会话数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(session *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.LastAccess) > s.ttl
}

func (s *MemoryStore) purgeLocked(now time.Time) int {
	purged := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

func (s *MemoryStore) evictOldestLocked() {
	var oldest *Session
	for _, session := range s.sessions {
		if oldest == nil || session.LastAccess.Before(oldest.LastAccess) {
			oldest = session
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
	}
}

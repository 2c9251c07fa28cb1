package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"frachtrechner/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, maxSessions int) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl, maxSessions)
	s.now = clock.now
	return s, clock
}

func testTables() *model.Tables {
	return model.NewTables(model.TableSet{
		Countries: []model.CountryCode{{Country: "Deutschland", Code: "DE"}},
	})
}

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	if s == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if s.Count() != 0 {
		t.Errorf("New store should be empty, got %d sessions", s.Count())
	}
}

// TestPutGet 测试保存与读取会话
func TestPutGet(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)

	session := s.Put("tarife.xlsx", testTables())
	if session.ID == "" {
		t.Fatal("session ID should not be empty")
	}

	got, err := s.Get(session.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FileName != "tarife.xlsx" {
		t.Errorf("FileName = %s, want tarife.xlsx", got.FileName)
	}
	if code, ok := got.Tables.CodeForCountry("Deutschland"); !ok || code != "DE" {
		t.Errorf("tables not kept: %q %v", code, ok)
	}
}

// TestGetNotFound 测试获取不存在的会话
func TestGetNotFound(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)

	if _, err := s.Get("non-existent"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get should return ErrSessionNotFound, got %v", err)
	}
}

// TestExpiry 测试会话过期与访问续期
func TestExpiry(t *testing.T) {
	s, clock := newTestStore(30*time.Minute, 0)
	session := s.Put("a.xlsx", testTables())

	clock.advance(20 * time.Minute)
	if _, err := s.Get(session.ID); err != nil {
		t.Fatalf("session should still be alive: %v", err)
	}

	// Get 已续期，再过 20 分钟仍有效
	clock.advance(20 * time.Minute)
	if _, err := s.Get(session.ID); err != nil {
		t.Fatalf("session should be refreshed by Get: %v", err)
	}

	clock.advance(31 * time.Minute)
	if _, err := s.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be expired, got %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("expired session should be removed, count=%d", s.Count())
	}
}

// TestPurgeExpired 测试批量清理
func TestPurgeExpired(t *testing.T) {
	s, clock := newTestStore(time.Minute, 0)
	s.Put("a.xlsx", testTables())
	s.Put("b.xlsx", testTables())

	clock.advance(2 * time.Minute)
	keep := s.Put("c.xlsx", testTables())

	if n := s.PurgeExpired(); n != 0 {
		t.Errorf("Put already purged expired sessions, PurgeExpired=%d", n)
	}
	if s.Count() != 1 {
		t.Fatalf("Count=%d, want 1", s.Count())
	}
	if _, err := s.Get(keep.ID); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

// TestMaxSessions 测试超出上限时淘汰最久未访问的会话
func TestMaxSessions(t *testing.T) {
	s, clock := newTestStore(0, 2)

	first := s.Put("a.xlsx", testTables())
	clock.advance(time.Second)
	second := s.Put("b.xlsx", testTables())
	clock.advance(time.Second)
	if _, err := s.Get(first.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	clock.advance(time.Second)
	s.Put("c.xlsx", testTables())

	if s.Count() != 2 {
		t.Fatalf("Count=%d, want 2", s.Count())
	}
	if _, err := s.Get(second.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("least recently used session should be evicted, got %v", err)
	}
	if _, err := s.Get(first.ID); err != nil {
		t.Errorf("recently used session should survive: %v", err)
	}
}

// TestDelete 测试删除会话
func TestDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)
	session := s.Put("a.xlsx", testTables())

	if err := s.Delete(session.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Delete should return ErrSessionNotFound, got %v", err)
	}
}

// TestConcurrentAccess 测试并发访问
func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore(time.Hour, 0)
	session := s.Put("a.xlsx", testTables())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Get(session.ID)
		}()
		go func() {
			defer wg.Done()
			s.Put("b.xlsx", testTables())
		}()
	}
	wg.Wait()

	if s.Count() != 51 {
		t.Errorf("Count=%d, want 51", s.Count())
	}
}

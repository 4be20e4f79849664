package session

import (
	"sync"
	"time"
)

// DefaultTTL is how long an armed update request stays valid
const DefaultTTL = 30 * time.Minute

// PendingUpdate marks a chat whose next upload replaces the course workbook
type PendingUpdate struct {
	ChatID    int64
	ExpiresAt time.Time
}

// Store keeps per-chat session state in memory
type Store struct {
	mu      sync.RWMutex
	pending map[int64]*PendingUpdate // chatID -> pending
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		pending: make(map[int64]*PendingUpdate),
		ttl:     ttl,
		now:     time.Now,
	}
}

// ExpectUpdate arms the update flag for a chat, replacing any earlier one
func (s *Store) ExpectUpdate(chatID int64) *PendingUpdate {
	p := &PendingUpdate{ChatID: chatID, ExpiresAt: s.now().Add(s.ttl)}
	s.mu.Lock()
	s.pending[chatID] = p
	s.mu.Unlock()
	return p
}

// ExpectingUpdate reports whether the chat has an unexpired update request
func (s *Store) ExpectingUpdate(chatID int64) bool {
	s.mu.RLock()
	p, exists := s.pending[chatID]
	s.mu.RUnlock()

	if !exists {
		return false
	}
	if s.now().After(p.ExpiresAt) {
		s.mu.Lock()
		delete(s.pending, chatID)
		s.mu.Unlock()
		return false
	}
	return true
}

// Clear drops the update request, called after a successful upload
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	delete(s.pending, chatID)
	s.mu.Unlock()
}

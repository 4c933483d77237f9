package conversation

import (
	"container/list"
	"context"
	"sync"
	"time"

	"propertychat/internal/model"
)

type memoryEntry struct {
	sessionID string
	filter    *model.SearchFilter
	expiresAt time.Time
}

// MemoryStore keeps filters in process memory. Entries expire after ttl and the
// least recently used session is evicted once maxSessions is reached.
type MemoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	maxSessions int
	order       *list.List // front = most recently used
	entries     map[string]*list.Element
	now         func() time.Time
}

// NewMemoryStore creates an in-memory store. ttl <= 0 disables expiry and
// maxSessions <= 0 disables eviction.
func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	return &MemoryStore{
		ttl:         ttl,
		maxSessions: maxSessions,
		order:       list.New(),
		entries:     make(map[string]*list.Element),
		now:         time.Now,
	}
}

// Name identifies the backend
func (s *MemoryStore) Name() string {
	return "memory"
}

// Get returns a copy of the session filter
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*model.SearchFilter, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[sessionID]
	if !ok {
		return nil, false, nil
	}
	entry := el.Value.(*memoryEntry)
	if s.expired(entry) {
		s.removeElement(el)
		return nil, false, nil
	}

	s.order.MoveToFront(el)
	return entry.filter.Clone(), true, nil
}

// Set stores a copy of filter for the session
func (s *MemoryStore) Set(_ context.Context, sessionID string, filter *model.SearchFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	if el, ok := s.entries[sessionID]; ok {
		entry := el.Value.(*memoryEntry)
		entry.filter = filter.Clone()
		entry.expiresAt = expiresAt
		s.order.MoveToFront(el)
		return nil
	}

	s.entries[sessionID] = s.order.PushFront(&memoryEntry{
		sessionID: sessionID,
		filter:    filter.Clone(),
		expiresAt: expiresAt,
	})
	s.evict()
	return nil
}

// Delete forgets the session
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[sessionID]; ok {
		s.removeElement(el)
	}
	return nil
}

// Len returns the number of sessions currently held, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// evict drops expired sessions from the back, then the oldest ones over capacity
func (s *MemoryStore) evict() {
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if s.expired(el.Value.(*memoryEntry)) {
			s.removeElement(el)
		}
		el = prev
	}

	for s.maxSessions > 0 && s.order.Len() > s.maxSessions {
		s.removeElement(s.order.Back())
	}
}

func (s *MemoryStore) removeElement(el *list.Element) {
	s.order.Remove(el)
	delete(s.entries, el.Value.(*memoryEntry).sessionID)
}

package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"propertychat/internal/model"
)

// ListKind names a per-user property list
type ListKind string

const (
	ListSaved      ListKind = "saved"
	ListComparison ListKind = "comparison"
)

// ErrComparisonFull is returned when a list already holds its maximum number of entries
var ErrComparisonFull = errors.New("list is full")

// ListStore persists saved and comparison lists keyed by (propertyId, username)
type ListStore interface {
	// Add inserts the entry. It returns false when the entry already exists.
	// limit > 0 caps the list size with ErrComparisonFull.
	Add(ctx context.Context, kind ListKind, username string, propertyID int64, limit int) (bool, error)
	// Entries returns the user's list, newest first
	Entries(ctx context.Context, kind ListKind, username string) ([]model.ListEntry, error)
	Remove(ctx context.Context, kind ListKind, username string, propertyID int64) error
	Clear(ctx context.Context, kind ListKind, username string) error
	Name() string
}

type listKey struct {
	kind     ListKind
	username string
}

// MemoryListStore keeps lists in process memory, used when no database is configured
type MemoryListStore struct {
	mu    sync.RWMutex
	lists map[listKey][]model.ListEntry
	now   func() time.Time
}

// NewMemoryListStore creates an empty in-memory list store
func NewMemoryListStore() *MemoryListStore {
	return &MemoryListStore{
		lists: make(map[listKey][]model.ListEntry),
		now:   time.Now,
	}
}

// Name identifies the backend
func (s *MemoryListStore) Name() string {
	return "memory"
}

// Add inserts an entry if it is not present yet
func (s *MemoryListStore) Add(_ context.Context, kind ListKind, username string, propertyID int64, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listKey{kind: kind, username: username}
	entries := s.lists[key]
	for _, e := range entries {
		if e.PropertyID == propertyID {
			return false, nil
		}
	}
	if limit > 0 && len(entries) >= limit {
		return false, ErrComparisonFull
	}

	s.lists[key] = append(entries, model.ListEntry{
		PropertyID: propertyID,
		Username:   username,
		AddedAt:    s.now(),
	})
	return true, nil
}

// Entries returns a copy of the list, newest first
func (s *MemoryListStore) Entries(_ context.Context, kind ListKind, username string) ([]model.ListEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.lists[listKey{kind: kind, username: username}]
	out := make([]model.ListEntry, len(entries))
	// Stored in insertion order; reverse for newest first
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}

// Remove deletes one entry; removing a missing entry is not an error
func (s *MemoryListStore) Remove(_ context.Context, kind ListKind, username string, propertyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listKey{kind: kind, username: username}
	entries := s.lists[key]
	for i, e := range entries {
		if e.PropertyID == propertyID {
			s.lists[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the user's list
func (s *MemoryListStore) Clear(_ context.Context, kind ListKind, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, listKey{kind: kind, username: username})
	return nil
}

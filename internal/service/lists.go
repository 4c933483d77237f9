package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/repository"
)

// MaxComparisonEntries caps the comparison list per user
const MaxComparisonEntries = 3

// ErrUsernameRequired is returned when the username is blank after trimming
var ErrUsernameRequired = errors.New("username required")

// PropertyCatalog resolves list entries to properties
type PropertyCatalog interface {
	CatalogReader
	ByIDs(ids []int64) []model.Property
}

// ListService manages saved and comparison lists
type ListService struct {
	store   repository.ListStore
	catalog PropertyCatalog
}

// NewListService creates a new list service
func NewListService(store repository.ListStore, catalog PropertyCatalog) *ListService {
	return &ListService{store: store, catalog: catalog}
}

// StoreName identifies the list backend
func (s *ListService) StoreName() string {
	return s.store.Name()
}

// NormalizeUsername lowercases and trims a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Add puts a property on a list. It returns false when it was already there.
func (s *ListService) Add(ctx context.Context, kind repository.ListKind, username string, propertyID int64) (bool, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return false, ErrUsernameRequired
	}

	limit := 0
	if kind == repository.ListComparison {
		limit = MaxComparisonEntries
	}
	return s.store.Add(ctx, kind, username, propertyID, limit)
}

// Properties returns the list resolved against the catalog, newest first
func (s *ListService) Properties(ctx context.Context, kind repository.ListKind, username string) ([]model.Property, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	entries, err := s.store.Entries(ctx, kind, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s list: %w", kind, err)
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.PropertyID
	}
	return s.catalog.ByIDs(ids), nil
}

// Remove takes a property off a list
func (s *ListService) Remove(ctx context.Context, kind repository.ListKind, username string, propertyID int64) error {
	username = NormalizeUsername(username)
	if username == "" {
		return ErrUsernameRequired
	}
	return s.store.Remove(ctx, kind, username, propertyID)
}

// Clear empties a list
func (s *ListService) Clear(ctx context.Context, kind repository.ListKind, username string) error {
	username = NormalizeUsername(username)
	if username == "" {
		return ErrUsernameRequired
	}
	return s.store.Clear(ctx, kind, username)
}

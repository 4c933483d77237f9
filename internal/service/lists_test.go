package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"propertychat/internal/repository"
)

func TestListService_Saved(t *testing.T) {
	ctx := context.Background()
	svc := NewListService(repository.NewMemoryListStore(), testCatalog())

	added, err := svc.Add(ctx, repository.ListSaved, "  Alice ", 2)
	if err != nil || !added {
		t.Fatalf("Add() = %v, %v", added, err)
	}
	added, err = svc.Add(ctx, repository.ListSaved, "alice", 2)
	if err != nil || added {
		t.Errorf("Second Add() = %v, %v; want already saved", added, err)
	}
	if _, err := svc.Add(ctx, repository.ListSaved, "alice", 5); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	props, err := svc.Properties(ctx, repository.ListSaved, "ALICE")
	if err != nil {
		t.Fatalf("Properties() error = %v", err)
	}
	if got := ids(props); !reflect.DeepEqual(got, []int64{5, 2}) {
		t.Errorf("Properties() = %v, want newest first [5 2]", got)
	}

	if err := svc.Remove(ctx, repository.ListSaved, "alice", 5); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	props, _ = svc.Properties(ctx, repository.ListSaved, "alice")
	if got := ids(props); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("Properties() after remove = %v, want [2]", got)
	}
}

func TestListService_ComparisonLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewListService(repository.NewMemoryListStore(), testCatalog())

	for _, id := range []int64{1, 2, 3} {
		if _, err := svc.Add(ctx, repository.ListComparison, "bob", id); err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
	}
	if _, err := svc.Add(ctx, repository.ListComparison, "bob", 4); !errors.Is(err, repository.ErrComparisonFull) {
		t.Errorf("Expected ErrComparisonFull, got %v", err)
	}
	// Saved lists have no cap
	for _, id := range []int64{1, 2, 3, 4} {
		if _, err := svc.Add(ctx, repository.ListSaved, "bob", id); err != nil {
			t.Errorf("Add(saved, %d) error = %v", id, err)
		}
	}

	if err := svc.Clear(ctx, repository.ListComparison, "bob"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	props, _ := svc.Properties(ctx, repository.ListComparison, "bob")
	if len(props) != 0 {
		t.Errorf("Expected empty comparison after clear, got %v", ids(props))
	}
}

func TestListService_UsernameRequired(t *testing.T) {
	ctx := context.Background()
	svc := NewListService(repository.NewMemoryListStore(), testCatalog())

	if _, err := svc.Add(ctx, repository.ListSaved, "   ", 1); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("Add() error = %v", err)
	}
	if _, err := svc.Properties(ctx, repository.ListSaved, ""); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("Properties() error = %v", err)
	}
	if err := svc.Remove(ctx, repository.ListSaved, "", 1); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("Remove() error = %v", err)
	}
	if err := svc.Clear(ctx, repository.ListComparison, ""); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("Clear() error = %v", err)
	}
}

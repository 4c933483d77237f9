package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"propertychat/internal/conversation"
	"propertychat/internal/model"
	"propertychat/internal/parser"
)

func newTestResolver(delegate FilterExtractor) (*Resolver, *conversation.MemoryStore) {
	store := conversation.NewMemoryStore(time.Hour, 100)
	lexical := NewLexicalExtractor(parser.New(nil, parser.DefaultThousandsThreshold))
	return NewResolver(delegate, lexical, store), store
}

func TestResolver_AISuccess(t *testing.T) {
	ctx := context.Background()
	delegate := &fakeExtractor{filter: &model.SearchFilter{Location: model.StringPtr("Seattle"), Action: model.ActionSearch}}
	r, store := newTestResolver(delegate)

	res := r.Resolve(ctx, "s1", "something in seattle", nil)
	if res.Source != SourceAI || res.AIFailed {
		t.Errorf("Source = %q, AIFailed = %v; want ai, false", res.Source, res.AIFailed)
	}
	if *res.Filter.Location != "Seattle" {
		t.Errorf("Location = %q", *res.Filter.Location)
	}

	stored, ok, _ := store.Get(ctx, "s1")
	if !ok || *stored.Location != "Seattle" {
		t.Errorf("Expected AI filter to be remembered, got %v", stored)
	}
}

func TestResolver_AIResultWithoutConstraintsIsNotRemembered(t *testing.T) {
	ctx := context.Background()
	delegate := &fakeExtractor{filter: &model.SearchFilter{Action: model.ActionSaved}}
	r, store := newTestResolver(delegate)

	res := r.Resolve(ctx, "s1", "show my saved homes", nil)
	if !res.Filter.IsSaved() {
		t.Errorf("Expected saved action, got %s", describeFilter(res.Filter))
	}
	if _, ok, _ := store.Get(ctx, "s1"); ok {
		t.Error("Saved action should not be remembered")
	}
}

func TestResolver_AIFailureFallsBackToLexical(t *testing.T) {
	ctx := context.Background()
	delegate := &fakeExtractor{err: ErrAIParse}
	r, store := newTestResolver(delegate)

	res := r.Resolve(ctx, "s1", "3 beds in Miami under 500k", nil)
	if res.Source != SourceLexical || !res.AIFailed {
		t.Errorf("Source = %q, AIFailed = %v; want lexical, true", res.Source, res.AIFailed)
	}
	want := &model.SearchFilter{
		Location: model.StringPtr("Miami"),
		MaxPrice: model.Float64Ptr(500000),
		Bedrooms: model.IntPtr(3),
		Action:   model.ActionSearch,
	}
	if !reflect.DeepEqual(res.Filter, want) {
		t.Errorf("Filter = %s, want %s", describeFilter(res.Filter), describeFilter(want))
	}
	if _, ok, _ := store.Get(ctx, "s1"); !ok {
		t.Error("Expected lexical filter to be remembered")
	}
	if delegate.calls != 1 {
		t.Errorf("Delegate must be called exactly once, got %d", delegate.calls)
	}
}

func TestResolver_FollowUpReusesLastFilter(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name     string
		delegate FilterExtractor
	}{
		{"no delegate", nil},
		{"failing delegate", &fakeExtractor{err: ErrAIUnavailable}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestResolver(tc.delegate)

			first := r.Resolve(ctx, "s1", "2 bed in Austin", nil)
			if first.Filter.Location == nil {
				t.Fatalf("First message should set a location, got %s", describeFilter(first.Filter))
			}

			res := r.Resolve(ctx, "s1", "yes please", nil)
			if res.Source != SourceFollowUp || !res.IsFollowUp {
				t.Errorf("Source = %q, IsFollowUp = %v; want followup, true", res.Source, res.IsFollowUp)
			}
			if !reflect.DeepEqual(res.Filter, first.Filter) {
				t.Errorf("Follow-up filter = %s, want %s", describeFilter(res.Filter), describeFilter(first.Filter))
			}
		})
	}
}

func TestResolver_FollowUpWithoutStateParsesMessage(t *testing.T) {
	r, _ := newTestResolver(nil)

	res := r.Resolve(context.Background(), "fresh", "yes", nil)
	if res.Source != SourceLexical {
		t.Errorf("Source = %q, want lexical", res.Source)
	}
	if !res.Filter.IsEmpty() {
		t.Errorf("Expected empty filter, got %s", describeFilter(res.Filter))
	}
}

func TestResolver_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(nil)

	r.Resolve(ctx, "alice", "homes in boston", nil)
	res := r.Resolve(ctx, "bob", "sure", nil)

	if res.Source == SourceFollowUp || res.Filter.Location != nil {
		t.Errorf("bob must not see alice's filter: %s", describeFilter(res.Filter))
	}
}

func TestResolver_UnconstrainedMessageKeepsState(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(nil)

	r.Resolve(ctx, "s1", "3 bedrooms in chicago", nil)
	r.Resolve(ctx, "s1", "hello there", nil)

	res := r.Resolve(ctx, "s1", "ok", nil)
	if res.Source != SourceFollowUp || res.Filter.Location == nil || *res.Filter.Location != "Chicago" {
		t.Errorf("Expected Chicago follow-up, got %s from %s", describeFilter(res.Filter), res.Source)
	}
}

func TestResolver_Idempotent(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver(nil)
	r.Resolve(ctx, "s1", "2bhk nyc budget 1.5m", nil)

	a := r.Resolve(ctx, "s1", "go ahead", nil)
	b := r.Resolve(ctx, "s1", "go ahead", nil)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Resolve is not idempotent: %+v vs %+v", a, b)
	}
}

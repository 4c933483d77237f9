package service

import (
	"context"
	"log"

	"propertychat/internal/conversation"
	"propertychat/internal/model"
)

// Resolution is the outcome of resolving one chat message
type Resolution struct {
	Filter     *model.SearchFilter
	Source     string // SourceAI, SourceLexical or SourceFollowUp
	IsFollowUp bool
	AIFailed   bool
}

// Resolver decides, per message, which extractor produces the filter and keeps
// the per-session follow-up state current.
type Resolver struct {
	delegate FilterExtractor // nil when no AI delegate is configured
	lexical  FilterExtractor
	store    conversation.Store
}

// NewResolver creates a resolver. delegate may be nil.
func NewResolver(delegate, lexical FilterExtractor, store conversation.Store) *Resolver {
	return &Resolver{
		delegate: delegate,
		lexical:  lexical,
		store:    store,
	}
}

// AIEnabled reports whether a delegate is configured
func (r *Resolver) AIEnabled() bool {
	return r.delegate != nil
}

// StoreName identifies the follow-up state backend
func (r *Resolver) StoreName() string {
	if r.store == nil {
		return "none"
	}
	return r.store.Name()
}

// Resolve turns a message into a filter. It never fails: AI errors fall back to
// the stored follow-up filter or the lexical parser.
func (r *Resolver) Resolve(ctx context.Context, sessionID, message string, history []model.ChatTurn) *Resolution {
	res := &Resolution{IsFollowUp: IsFollowUp(message)}

	if r.delegate != nil {
		filter, err := r.delegate.Extract(ctx, message, history, res.IsFollowUp)
		if err == nil {
			log.Printf("🤖 AI extracted filters: %s", describeFilter(filter))
			res.Filter = filter
			res.Source = SourceAI
			r.remember(ctx, sessionID, filter)
			return res
		}
		log.Printf("⚠️  AI extraction failed, using pattern fallback: %v", err)
		res.AIFailed = true
	}

	if res.IsFollowUp {
		if last, ok := r.recall(ctx, sessionID); ok {
			log.Printf("↩️  Reusing last filters for follow-up: %s", describeFilter(last))
			res.Filter = last
			res.Source = SourceFollowUp
			return res
		}
	}

	filter, _ := r.lexical.Extract(ctx, message, history, res.IsFollowUp)
	if filter == nil {
		filter = model.NewSearchFilter()
	}
	debugf("🔍 Pattern parser extracted: %s", describeFilter(filter))
	res.Filter = filter
	res.Source = SourceLexical
	r.remember(ctx, sessionID, filter)
	return res
}

// remember stores filters that carry a concrete constraint
func (r *Resolver) remember(ctx context.Context, sessionID string, filter *model.SearchFilter) {
	if r.store == nil || sessionID == "" || !filter.HasConstraints() {
		return
	}
	if err := r.store.Set(ctx, sessionID, filter); err != nil {
		log.Printf("Warning: Failed to store conversation state: %v", err)
	}
}

// Forget drops the follow-up state of a session
func (r *Resolver) Forget(ctx context.Context, sessionID string) error {
	if r.store == nil || sessionID == "" {
		return nil
	}
	return r.store.Delete(ctx, sessionID)
}

func (r *Resolver) recall(ctx context.Context, sessionID string) (*model.SearchFilter, bool) {
	if r.store == nil || sessionID == "" {
		return nil, false
	}
	filter, ok, err := r.store.Get(ctx, sessionID)
	if err != nil {
		log.Printf("Warning: Failed to load conversation state: %v", err)
		return nil, false
	}
	if !ok || filter.IsEmpty() {
		return nil, false
	}
	return filter, true
}

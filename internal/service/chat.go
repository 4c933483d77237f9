package service

import (
	"context"
	"log"
	"sync"
	"time"

	"propertychat/internal/model"
)

// CatalogReader exposes the read-only property catalog
type CatalogReader interface {
	All() []model.Property
}

// SearchLogger persists resolved chat searches
type SearchLogger interface {
	LogSearch(ctx context.Context, entry *model.SearchLog) error
}

// SearchPublisher forwards resolved chat searches to an analytics stream
type SearchPublisher interface {
	PublishSearch(ctx context.Context, entry *model.SearchLog) error
}

// ChatEventCallback is called for streaming chat events
type ChatEventCallback func(event string, data any) error

// ChatService runs one chat turn: resolve, match, relax, compose
type ChatService struct {
	resolver  *Resolver
	catalog   CatalogReader
	engine    *RelaxationEngine
	composer  *Composer
	logger    SearchLogger
	publisher SearchPublisher

	wg sync.WaitGroup
}

// NewChatService creates a new chat service. logger and publisher may be nil.
func NewChatService(
	resolver *Resolver,
	catalog CatalogReader,
	engine *RelaxationEngine,
	composer *Composer,
	logger SearchLogger,
	publisher SearchPublisher,
) *ChatService {
	return &ChatService{
		resolver:  resolver,
		catalog:   catalog,
		engine:    engine,
		composer:  composer,
		logger:    logger,
		publisher: publisher,
	}
}

// AIEnabled reports whether the AI delegate is configured
func (s *ChatService) AIEnabled() bool {
	return s.resolver.AIEnabled()
}

// ConversationStore identifies where follow-up state is kept
func (s *ChatService) ConversationStore() string {
	return s.resolver.StoreName()
}

// ResetSession forgets what the session searched last, so confirmations no longer reuse it
func (s *ChatService) ResetSession(ctx context.Context, sessionID string) error {
	return s.resolver.Forget(ctx, sessionID)
}

// CatalogSize returns the number of loaded properties
func (s *ChatService) CatalogSize() int {
	return len(s.catalog.All())
}

// Chat answers one message. Resolution failures degrade to the lexical parser
// and empty matches degrade to relaxed results, so no error is returned.
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) *model.ChatResponse {
	startTime := time.Now()

	res := s.resolver.Resolve(ctx, req.SessionID, req.Message, req.History)
	resp := s.newResponse(req, res)

	if res.Filter.IsSaved() {
		resp.Message = SavedPromptMessage
		s.finish(req, res, nil, resp, startTime)
		return resp
	}

	match := s.engine.Match(res.Filter, s.catalog.All())
	resp.Message, _ = s.composer.Compose(ctx, s.composeRequest(req, res, match))
	resp.Properties = match.Results
	resp.Relaxation = match.Rationale

	s.finish(req, res, match, resp, startTime)
	return resp
}

// ChatStream answers one message, emitting filters, properties and reply tokens as they are ready
func (s *ChatService) ChatStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()

	if err := callback("start", map[string]any{
		"session_id": req.SessionID,
		"status":     "Understanding your request...",
	}); err != nil {
		return nil, err
	}

	res := s.resolver.Resolve(ctx, req.SessionID, req.Message, req.History)
	resp := s.newResponse(req, res)

	if err := callback("filters", map[string]any{
		"filters": res.Filter,
		"source":  res.Source,
	}); err != nil {
		return nil, err
	}

	if res.Filter.IsSaved() {
		resp.Message = SavedPromptMessage
		if err := callback("message", map[string]any{"message": resp.Message}); err != nil {
			return nil, err
		}
		s.finish(req, res, nil, resp, startTime)
		return resp, nil
	}

	match := s.engine.Match(res.Filter, s.catalog.All())
	resp.Properties = match.Results
	resp.Relaxation = match.Rationale

	if err := callback("properties", map[string]any{
		"properties": match.Results,
		"count":      len(match.Results),
		"relaxation": match.Rationale,
	}); err != nil {
		return nil, err
	}

	text, phrased, err := s.composer.ComposeStream(ctx, s.composeRequest(req, res, match), func(token string) error {
		return callback("token", map[string]any{"content": token})
	})
	if err != nil {
		return nil, err
	}
	resp.Message = text

	if err := callback("message", map[string]any{
		"message": resp.Message,
		"ai":      phrased,
	}); err != nil {
		return nil, err
	}

	s.finish(req, res, match, resp, startTime)
	return resp, nil
}

// Wait blocks until pending search log writes are done
func (s *ChatService) Wait() {
	s.wg.Wait()
}

func (s *ChatService) newResponse(req *model.ChatRequest, res *Resolution) *model.ChatResponse {
	return &model.ChatResponse{
		Filters:    res.Filter,
		Properties: []model.Property{},
		SessionID:  req.SessionID,
		AIEnabled:  s.AIEnabled(),
	}
}

func (s *ChatService) composeRequest(req *model.ChatRequest, res *Resolution, match *MatchResult) *ComposeRequest {
	return &ComposeRequest{
		Message: req.Message,
		Filter:  res.Filter,
		Match:   match,
		// Phrasing is skipped when extraction already failed on this turn
		UseAI: !res.AIFailed,
	}
}

// finish stamps the response time and logs the search without blocking the reply
func (s *ChatService) finish(req *model.ChatRequest, res *Resolution, match *MatchResult, resp *model.ChatResponse, startTime time.Time) {
	resp.Took = time.Since(startTime).Milliseconds()

	if s.logger == nil && s.publisher == nil {
		return
	}

	entry := &model.SearchLog{
		SessionID:   req.SessionID,
		Message:     req.Message,
		Filters:     res.Filter.Clone(),
		Source:      res.Source,
		ResultCount: len(resp.Properties),
		TookMs:      resp.Took,
		CreatedAt:   time.Now().UTC(),
	}
	if match != nil && match.Relaxed() {
		entry.Relaxation = match.Kind
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.logger != nil {
			if err := s.logger.LogSearch(ctx, entry); err != nil {
				log.Printf("Warning: Failed to log search: %v", err)
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishSearch(ctx, entry); err != nil {
				log.Printf("Warning: Failed to publish search event: %v", err)
			}
		}
	}()
}

package service

import (
	"context"
	"regexp"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/parser"
)

// Extraction sources reported with every resolution
const (
	SourceAI       = "ai"
	SourceLexical  = "lexical"
	SourceFollowUp = "followup"
)

// FilterExtractor turns a chat message into a search filter
type FilterExtractor interface {
	Extract(ctx context.Context, message string, history []model.ChatTurn, isFollowUp bool) (*model.SearchFilter, error)
	Name() string
}

// LexicalExtractor runs the deterministic pattern parser. It never fails.
type LexicalExtractor struct {
	parser *parser.Parser
}

// NewLexicalExtractor creates a lexical extractor around p
func NewLexicalExtractor(p *parser.Parser) *LexicalExtractor {
	return &LexicalExtractor{parser: p}
}

// Extract parses the message alone; history and follow-up state are handled by the resolver
func (e *LexicalExtractor) Extract(_ context.Context, message string, _ []model.ChatTurn, _ bool) (*model.SearchFilter, error) {
	return e.parser.Parse(message), nil
}

// Name identifies the extractor in logs
func (e *LexicalExtractor) Name() string {
	return SourceLexical
}

var followUpPattern = regexp.MustCompile(`^(yes|yeah|yep|sure|ok|okay|please|show me|show|let's see|go ahead|proceed)`)

// IsFollowUp reports whether the message opens with an affirmation word
func IsFollowUp(message string) bool {
	return followUpPattern.MatchString(strings.ToLower(strings.TrimSpace(message)))
}

package model

import "time"

// Speakers used in chat history
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatTurn is one message of the conversation as the client saw it
type ChatTurn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatRequest represents a conversational search request
type ChatRequest struct {
	Message   string     `json:"message" binding:"required"`
	History   []ChatTurn `json:"history,omitempty"`
	SessionID string     `json:"session_id,omitempty" binding:"omitempty,max=128"`
}

// ChatResponse is returned by the chat endpoints
type ChatResponse struct {
	Message    string        `json:"message"`
	Filters    *SearchFilter `json:"filters"`
	Properties []Property    `json:"properties"`
	SessionID  string        `json:"session_id"`
	AIEnabled  bool          `json:"ai_enabled"`
	Relaxation string        `json:"relaxation,omitempty"`
	Took       int64         `json:"took_ms"`
}

// SearchLog is one resolved chat search, written to the search log and the analytics stream
type SearchLog struct {
	SessionID   string        `json:"session_id" db:"session_id"`
	Message     string        `json:"message" db:"message"`
	Filters     *SearchFilter `json:"filters" db:"-"`
	Source      string        `json:"source" db:"source"`
	Relaxation  string        `json:"relaxation,omitempty" db:"relaxation"`
	ResultCount int           `json:"result_count" db:"result_count"`
	TookMs      int64         `json:"took_ms" db:"response_time_ms"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

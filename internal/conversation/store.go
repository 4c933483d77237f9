// Package conversation remembers the last concrete search filter of each chat
// session so a short confirmation ("yes", "show me") can reuse it.
package conversation

import (
	"context"

	"propertychat/internal/model"
)

// Store holds the most recent filter per session
type Store interface {
	// Get returns the remembered filter, or ok=false when the session has none
	Get(ctx context.Context, sessionID string) (filter *model.SearchFilter, ok bool, err error)
	// Set replaces the remembered filter for the session
	Set(ctx context.Context, sessionID string, filter *model.SearchFilter) error
	// Delete forgets the session; unknown sessions are not an error
	Delete(ctx context.Context, sessionID string) error
	// Name identifies the backend in logs and health output
	Name() string
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"propertychat/internal/model"
)

// Fixed replies
const (
	SavedPromptMessage = "Let me fetch your saved properties! 💾"
	fallbackFound      = "Found %d properties for you! Check out the filtered results in the main grid. 🏠"
	fallbackNotFound   = "No properties match those criteria. Try adjusting your search! 🔍"
)

const phrasingPrompt = `You are Mira, a friendly real estate assistant chatbot on a property listing website.

IMPORTANT CONTEXT: When you find properties, they appear in the MAIN GRID on the left side of the screen (not in this chat). The chat is a floating widget on the right.

User asked: %q
Filters applied: %s
Properties found: %d
%s
Generate a helpful response following these rules:
1. Be conversational and friendly with 1-2 relevant emojis
2. If properties found: mention the count and say they've been filtered in the main view/grid
3. If NO properties found: suggest adjusting criteria (different location, higher budget, fewer beds)
4. You can briefly mention 1-2 standout properties from the preview if relevant
5. Keep it SHORT (2-3 sentences max)
6. NEVER say "below" or "see below" - properties appear in the main grid, not the chat`

// ComposeRequest carries everything the composer may phrase
type ComposeRequest struct {
	Message string
	Filter  *model.SearchFilter
	Match   *MatchResult
	UseAI   bool // false forces the deterministic template
}

// Composer produces the reply text for a chat turn
type Composer struct {
	client AIClient
	ranker *Ranker
}

// NewComposer creates a composer. client may be nil.
func NewComposer(client AIClient, ranker *Ranker) *Composer {
	if ranker == nil {
		ranker = NewRanker(0.6, 0.4, 3)
	}
	return &Composer{client: client, ranker: ranker}
}

func (c *Composer) aiAvailable(req *ComposeRequest) bool {
	return req.UseAI && c.client != nil && c.client.IsEnabled()
}

// Compose returns the reply and whether the delegate phrased it
func (c *Composer) Compose(ctx context.Context, req *ComposeRequest) (string, bool) {
	if !c.aiAvailable(req) {
		return c.Template(req), false
	}

	text, err := c.client.Complete(ctx, c.BuildPrompt(req))
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("⚠️  AI response generation failed: %v", err)
		return c.fallback(req), false
	}

	debugf("🤖 AI generated response: %.80s", text)
	return strings.TrimSpace(text), true
}

// ComposeStream phrases the reply through the streaming delegate, forwarding tokens.
// The returned error is only set when onToken fails.
func (c *Composer) ComposeStream(ctx context.Context, req *ComposeRequest, onToken func(string) error) (string, bool, error) {
	if !c.aiAvailable(req) {
		return c.Template(req), false, nil
	}

	var callbackErr error
	text, err := c.client.CompleteStream(ctx, c.BuildPrompt(req), func(token string) error {
		if cerr := onToken(token); cerr != nil {
			callbackErr = cerr
			return cerr
		}
		return nil
	})
	if callbackErr != nil {
		return "", false, callbackErr
	}
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("⚠️  AI streaming response failed: %v", err)
		return c.fallback(req), false, nil
	}
	return strings.TrimSpace(text), true, nil
}

// BuildPrompt embeds the message, the filter, the count and the top previews
func (c *Composer) BuildPrompt(req *ComposeRequest) string {
	results := req.Match.Results

	var extra strings.Builder
	if len(results) > 0 {
		extra.WriteString("\nTop matches:\n")
		for i, p := range c.ranker.Top(results, req.Filter) {
			if i > 0 {
				extra.WriteString("\n")
			}
			fmt.Fprintf(&extra, "• %s in %s - $%s (%dBR)", p.Title, p.Location, formatPrice(p.Price), p.Bedrooms)
		}
		extra.WriteString("\n")
	}
	if req.Match.Rationale != "" {
		fmt.Fprintf(&extra, "\nNote: the exact criteria had no matches. %s\n", req.Match.Rationale)
	}

	return fmt.Sprintf(phrasingPrompt, req.Message, describeFilter(req.Filter), len(results), extra.String())
}

// Template renders the deterministic reply used when no delegate phrases it
func (c *Composer) Template(req *ComposeRequest) string {
	if req.Match.Rationale != "" {
		return req.Match.Rationale
	}

	n := len(req.Match.Results)
	f := req.Filter
	if f.IsEmpty() {
		return fmt.Sprintf("Here are all %d available properties! 🏘️", n)
	}

	noun := "properties"
	if n == 1 {
		noun = "property"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Found %d %s", n, noun)
	if f.Location != nil {
		fmt.Fprintf(&b, " in %s", *f.Location)
	}
	if f.Bedrooms != nil && *f.Bedrooms > 0 {
		fmt.Fprintf(&b, " with %d+ bedrooms", *f.Bedrooms)
	}
	if f.MaxPrice != nil && *f.MaxPrice > 0 {
		fmt.Fprintf(&b, " under $%s", formatPrice(*f.MaxPrice))
	}
	b.WriteString("!\n\nHere are your matches:")
	return b.String()
}

func (c *Composer) fallback(req *ComposeRequest) string {
	if len(req.Match.Results) > 0 {
		return fmt.Sprintf(fallbackFound, len(req.Match.Results))
	}
	return fallbackNotFound
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"propertychat/internal/model"
	"propertychat/internal/parser"
	"propertychat/internal/utils"
)

const extractionInstruction = `You are analyzing a chat conversation to extract property search filters.`

const extractionKeys = `Return ONLY a JSON object with these keys (only include keys that are mentioned):
- location (string, e.g. "Miami", "New York")
- maxPrice (number, convert "1 million" to 1000000, "500k" to 500000)
- minPrice (number)
- bedrooms (number)
- action (string: "search" or "saved")

If the user asks to see saved properties, set action to "saved".
If user says yes/sure/show me to a previous property query, extract the filters from that previous query.`

const followUpInstruction = `This appears to be a follow-up/confirmation. If the previous message mentioned a location or criteria, USE THOSE SAME FILTERS.`

// DelegateExtractor asks the AI delegate for a filter object
type DelegateExtractor struct {
	client       AIClient
	vocab        *parser.Vocabulary
	validate     *validator.Validate
	historyTurns int
}

// NewDelegateExtractor creates an AI-backed extractor. Locations returned by the
// model are canonicalized against vocab.
func NewDelegateExtractor(client AIClient, vocab *parser.Vocabulary, historyTurns int) *DelegateExtractor {
	if vocab == nil {
		vocab = parser.DefaultVocabulary()
	}
	if historyTurns <= 0 {
		historyTurns = 6
	}
	return &DelegateExtractor{
		client:       client,
		vocab:        vocab,
		validate:     validator.New(),
		historyTurns: historyTurns,
	}
}

// Name identifies the extractor in logs
func (e *DelegateExtractor) Name() string {
	return SourceAI
}

// Extract calls the delegate once. Failures are returned wrapped in ErrAIUnavailable or ErrAIParse.
func (e *DelegateExtractor) Extract(ctx context.Context, message string, history []model.ChatTurn, isFollowUp bool) (*model.SearchFilter, error) {
	if e.client == nil || !e.client.IsEnabled() {
		return nil, ErrAIUnavailable
	}

	prompt := e.BuildPrompt(message, history, isFollowUp)
	debugf("📤 Extraction prompt: %s", prompt)

	raw, err := e.client.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrAIUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	filter, err := e.parseResponse(raw)
	if err != nil {
		return nil, err
	}
	return filter, nil
}

// BuildPrompt renders the instruction, the recent turns, the current message and,
// for follow-ups, the reuse instruction.
func (e *DelegateExtractor) BuildPrompt(message string, history []model.ChatTurn, isFollowUp bool) string {
	var b strings.Builder
	b.WriteString(extractionInstruction)
	b.WriteString("\n\n")

	if len(history) > e.historyTurns {
		history = history[len(history)-e.historyTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for i, turn := range history {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(speakerLabel(turn.Sender))
			b.WriteString(": ")
			b.WriteString(turn.Text)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Current user message: %q\n\n", message)

	if isFollowUp {
		b.WriteString(followUpInstruction)
		b.WriteString("\n\n")
	}

	b.WriteString(extractionKeys)
	return b.String()
}

func speakerLabel(sender string) string {
	if sender == model.SenderUser {
		return "User"
	}
	return "Mira"
}

// parseResponse turns raw model text into a validated filter
func (e *DelegateExtractor) parseResponse(raw string) (*model.SearchFilter, error) {
	obj, err := utils.TryParseJSONObject(utils.StripCodeFences(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}

	filter := model.NewSearchFilter()

	if v, ok := obj["location"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: location must be a string, got %T", ErrAIParse, v)
		}
		if s = strings.TrimSpace(s); s != "" {
			filter.Location = model.StringPtr(e.vocab.Canonicalize(s))
		}
	}

	if filter.MinPrice, err = numberField(obj, "minPrice"); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = numberField(obj, "maxPrice"); err != nil {
		return nil, err
	}
	beds, err := numberField(obj, "bedrooms")
	if err != nil {
		return nil, err
	}
	if beds != nil {
		filter.Bedrooms = model.IntPtr(int(*beds))
	}

	if v, ok := obj["action"]; ok && v != nil {
		s, _ := v.(string)
		if strings.EqualFold(strings.TrimSpace(s), string(model.ActionSaved)) {
			filter.Action = model.ActionSaved
		}
	}

	if err := e.validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIParse, err)
	}
	return filter, nil
}

// numberField reads a numeric key that models sometimes emit as a string ("500000" or "500,000").
// Values are rounded to whole currency units.
func numberField(obj map[string]interface{}, key string) (*float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}

	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		s := strings.TrimSpace(strings.NewReplacer(",", "", "$", "").Replace(t))
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number: %q", ErrAIParse, key, t)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%w: %s must be a number, got %T", ErrAIParse, key, v)
	}

	if math.IsInf(n, 0) || math.IsNaN(n) {
		return nil, fmt.Errorf("%w: %s is not a finite number: %v", ErrAIParse, key, v)
	}
	n = math.Round(n)
	return &n, nil
}

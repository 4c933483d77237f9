package service

import (
	"context"
	"strings"
	"sync"

	"propertychat/internal/model"
)

// fakeAI is a scripted AIClient
type fakeAI struct {
	mu        sync.Mutex
	enabled   bool
	responses []string
	err       error
	prompts   []string
}

func newFakeAI(responses ...string) *fakeAI {
	return &fakeAI{enabled: true, responses: responses}
}

func (f *fakeAI) IsEnabled() bool { return f.enabled }

func (f *fakeAI) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeAI) CompleteStream(ctx context.Context, prompt string, onToken func(string) error) (string, error) {
	text, err := f.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	for i, word := range strings.Fields(text) {
		if i > 0 {
			word = " " + word
		}
		if err := onToken(word); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeExtractor returns a fixed filter or error
type fakeExtractor struct {
	filter *model.SearchFilter
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(context.Context, string, []model.ChatTurn, bool) (*model.SearchFilter, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.filter.Clone(), nil
}

func (f *fakeExtractor) Name() string { return "fake" }

type staticCatalog []model.Property

func (c staticCatalog) All() []model.Property { return c }

func (c staticCatalog) ByIDs(ids []int64) []model.Property {
	var out []model.Property
	for _, id := range ids {
		for _, p := range c {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []*model.SearchLog
}

func (r *recordingLogger) LogSearch(_ context.Context, entry *model.SearchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingLogger) PublishSearch(ctx context.Context, entry *model.SearchLog) error {
	return r.LogSearch(ctx, entry)
}

func (r *recordingLogger) all() []*model.SearchLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.SearchLog(nil), r.entries...)
}

func testCatalog() staticCatalog {
	return staticCatalog{
		{ID: 1, Title: "Downtown Loft", Location: "New York, NY", Price: 850000, Bedrooms: 2, Amenities: []string{"Doorman", "Gym"}},
		{ID: 2, Title: "Beach Condo", Location: "Miami, FL", Price: 620000, Bedrooms: 3, Amenities: []string{"Swimming Pool", "Ocean View"}},
		{ID: 3, Title: "Brickell Studio", Location: "Miami, FL", Price: 295000, Bedrooms: 1, Amenities: []string{"Concierge"}},
		{ID: 4, Title: "Craftsman Bungalow", Location: "Austin, TX", Price: 480000, Bedrooms: 2, Amenities: []string{"Yard", "Pet Friendly"}},
		{ID: 5, Title: "Hillside Family Home", Location: "Los Angeles, CA", Price: 1250000, Bedrooms: 4, Amenities: []string{"Garden"}},
		{ID: 6, Title: "Ranch Retreat", Location: "Dallas, TX", Price: 365000, Bedrooms: 3, Amenities: []string{"Garage"}},
	}
}

func ids(props []model.Property) []int64 {
	out := make([]int64, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

package parser

import (
	"reflect"
	"strings"
	"testing"

	"propertychat/internal/model"
)

func newTestParser() *Parser {
	return New(nil, DefaultThousandsThreshold)
}

func TestParse_ChatQueries(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		query    string
		location *string
		maxPrice *float64
		bedrooms *int
		action   model.SearchAction
	}{
		{
			name:     "Beds, location and budget",
			query:    "3 beds in Miami under 500k",
			location: model.StringPtr("Miami"),
			maxPrice: model.Float64Ptr(500000),
			bedrooms: model.IntPtr(3),
			action:   model.ActionSearch,
		},
		{
			name:     "Million with qualifier",
			query:    "under 1 million",
			maxPrice: model.Float64Ptr(1000000),
			action:   model.ActionSearch,
		},
		{
			name:     "Bare k suffix",
			query:    "750k",
			maxPrice: model.Float64Ptr(750000),
			action:   model.ActionSearch,
		},
		{
			name:     "Lakh suffix",
			query:    "2 lakh",
			maxPrice: model.Float64Ptr(200000),
			action:   model.ActionSearch,
		},
		{
			name:     "Dollar amount with separators",
			query:    "something in austin for $1,250,000",
			location: model.StringPtr("Austin"),
			maxPrice: model.Float64Ptr(1250000),
			action:   model.ActionSearch,
		},
		{
			name:     "Decimal million",
			query:    "2bhk nyc budget 1.5m",
			location: model.StringPtr("New York"),
			maxPrice: model.Float64Ptr(1500000),
			bedrooms: model.IntPtr(2),
			action:   model.ActionSearch,
		},
		{
			name:     "Bare number without qualifier is not a price",
			query:    "4 bedroom near 5th avenue",
			bedrooms: model.IntPtr(4),
			action:   model.ActionSearch,
		},
		{
			name:     "Later qualified price wins over earlier bare number",
			query:    "2 bathrooms under 400k",
			maxPrice: model.Float64Ptr(400000),
			action:   model.ActionSearch,
		},
		{
			name:   "Saved intent short-circuits",
			query:  "show my saved 3 bed homes in miami",
			action: model.ActionSaved,
		},
		{
			name:   "Favorites intent",
			query:  "what are my favorites?",
			action: model.ActionSaved,
		},
		{
			name:   "Show all returns empty filter",
			query:  "show all properties in Miami under 500k",
			action: model.ActionSearch,
		},
		{
			name:   "Affirmation alone is empty",
			query:  "yes",
			action: model.ActionSearch,
		},
		{
			name:   "Empty",
			query:  "   ",
			action: model.ActionSearch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.query)

			if got.Action != tt.action {
				t.Errorf("Action = %q, want %q", got.Action, tt.action)
			}
			if !reflect.DeepEqual(got.Location, tt.location) {
				t.Errorf("Location = %v, want %v", deref(got.Location), deref(tt.location))
			}
			if !reflect.DeepEqual(got.MaxPrice, tt.maxPrice) {
				t.Errorf("MaxPrice = %v, want %v", deref(got.MaxPrice), deref(tt.maxPrice))
			}
			if !reflect.DeepEqual(got.Bedrooms, tt.bedrooms) {
				t.Errorf("Bedrooms = %v, want %v", deref(got.Bedrooms), deref(tt.bedrooms))
			}
			if got.FreeText != "" {
				t.Errorf("Parse should not set FreeText, got %q", got.FreeText)
			}
		})
	}
}

func TestParse_LocationVocabularyOrder(t *testing.T) {
	p := newTestParser()

	// "new york" precedes "miami" in the vocabulary, regardless of text position
	got := p.Parse("miami or new york")
	if got.Location == nil || *got.Location != "New York" {
		t.Errorf("Location = %v, want New York", deref(got.Location))
	}

	got = p.Parse("2 beds in dallas")
	if got.Location == nil || *got.Location != "Dallas" {
		t.Errorf("Location = %v, want Dallas (abbreviation la must not match inside dallas)", deref(got.Location))
	}

	got = p.Parse("a place with a view")
	if got.Location != nil {
		t.Errorf("Location = %v, want none", *got.Location)
	}
}

func TestNew_VocabularyDefaults(t *testing.T) {
	if New(nil, DefaultThousandsThreshold).Vocabulary() == nil {
		t.Fatal("Expected the built-in vocabulary")
	}

	custom, err := ParseVocabulary([]byte("locations:\n  - key: nola\n    label: New Orleans\n"))
	if err != nil {
		t.Fatalf("ParseVocabulary() error = %v", err)
	}
	p := New(custom, DefaultThousandsThreshold)
	if p.Vocabulary() != custom {
		t.Error("Expected the custom vocabulary to be kept")
	}
	if got := p.Parse("homes in nola"); got.Location == nil || *got.Location != "New Orleans" {
		t.Errorf("Location = %v, want New Orleans", deref(got.Location))
	}
}

// The small-number threshold is pinned at 10,000 for every parser entry point.
func TestParse_ThousandsThresholdRegression(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		query string
		want  float64
	}{
		{"under 500", 500000},
		{"under 9999", 9999000},
		{"under 10000", 10000},
		{"under $199", 199000},
		{"max 250000", 250000},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			chat := p.Parse(tt.query)
			if chat.MaxPrice == nil || *chat.MaxPrice != tt.want {
				t.Errorf("Parse(%q).MaxPrice = %v, want %v", tt.query, deref(chat.MaxPrice), tt.want)
			}
			instant := p.ParseInstant(tt.query)
			if instant.MaxPrice == nil || *instant.MaxPrice != tt.want {
				t.Errorf("ParseInstant(%q).MaxPrice = %v, want %v", tt.query, deref(instant.MaxPrice), tt.want)
			}
		})
	}
}

func TestParse_OverflowingPriceIgnored(t *testing.T) {
	p := newTestParser()
	huge := strings.Repeat("9", 305)

	tests := []string{
		"under " + huge + " m",
		"3 beds in miami under " + huge + " million",
	}

	for _, query := range tests {
		for name, got := range map[string]*model.SearchFilter{
			"Parse":        p.Parse(query),
			"ParseInstant": p.ParseInstant(query),
		} {
			if got.MaxPrice != nil {
				t.Errorf("%s(%.20q...).MaxPrice = %v, want none", name, query, *got.MaxPrice)
			}
		}
	}

	got := p.Parse("under " + huge + " m or under 500k")
	if got.MaxPrice == nil || *got.MaxPrice != 500000 {
		t.Errorf("Expected the next finite price to be used, got %v", deref(got.MaxPrice))
	}
}

func TestParse_CustomThreshold(t *testing.T) {
	p := New(nil, 200)

	got := p.Parse("under 500")
	if got.MaxPrice == nil || *got.MaxPrice != 500 {
		t.Errorf("MaxPrice = %v, want 500 with threshold 200", deref(got.MaxPrice))
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := newTestParser()
	queries := []string{"3 beds in Miami under 500k", "show me saved", "2 lakh", "", "sf 1br $900k"}

	for _, q := range queries {
		first := p.Parse(q)
		for i := 0; i < 5; i++ {
			if again := p.Parse(q); !reflect.DeepEqual(first, again) {
				t.Fatalf("Parse(%q) not deterministic: %+v vs %+v", q, first, again)
			}
		}
	}
}

func TestParseInstant(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		query    string
		bedrooms *int
		maxPrice *float64
		freeText string
	}{
		{
			name:     "Beds, price and leftover location",
			query:    "3 beds in Miami under 500k",
			bedrooms: model.IntPtr(3),
			maxPrice: model.Float64Ptr(500000),
			freeText: "miami",
		},
		{
			name:     "Stop words removed",
			query:    "show me a house with pool",
			freeText: "pool",
		},
		{
			name:     "Hyphenated bedroom",
			query:    "2-bed apartment downtown",
			bedrooms: model.IntPtr(2),
			freeText: "downtown",
		},
		{
			name:     "Intent words are plain text here",
			query:    "saved",
			freeText: "saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseInstant(tt.query)
			if !reflect.DeepEqual(got.Bedrooms, tt.bedrooms) {
				t.Errorf("Bedrooms = %v, want %v", deref(got.Bedrooms), deref(tt.bedrooms))
			}
			if !reflect.DeepEqual(got.MaxPrice, tt.maxPrice) {
				t.Errorf("MaxPrice = %v, want %v", deref(got.MaxPrice), deref(tt.maxPrice))
			}
			if got.FreeText != tt.freeText {
				t.Errorf("FreeText = %q, want %q", got.FreeText, tt.freeText)
			}
			if got.Location != nil {
				t.Errorf("ParseInstant should not set Location, got %q", *got.Location)
			}
		})
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

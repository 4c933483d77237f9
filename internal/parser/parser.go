// Package parser extracts search criteria from free text with regular
// expressions and a location vocabulary. Everything here is pure: the same
// text always yields the same filter.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"propertychat/internal/model"
)

// DefaultThousandsThreshold is the single small-number heuristic shared by
// chat and instant search: a bare price below it is read as thousands.
const DefaultThousandsThreshold = 10000

var (
	bedroomPattern = regexp.MustCompile(`(?i)(\d+)\s*-?\s*(bedrooms|bedroom|beds|bed|bhk|br|rk|b)\b`)

	pricePattern = regexp.MustCompile(`(?i)(under|below|less than|budget|max|upto|up to|<)?\s*(\$)?\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*(k|m|million|thousand|lac|lakhs|lakh)?\b`)

	stopWordPattern = regexp.MustCompile(`(?i)\b(in|at|for|the|with|and|a|an|show|me|find|get|looking|want|need|properties|property|homes|home|house|houses|apartment|apartments|flat|flats)\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

var (
	savedIntentWords   = []string{"saved", "bookmark", "my properties", "favorites", "favourites"}
	showAllIntentWords = []string{"all properties", "show all", "everything"}
)

// Parser is the lexical pattern parser
type Parser struct {
	vocab              *Vocabulary
	thousandsThreshold float64
}

// New creates a parser. A nil vocabulary uses the built-in one.
func New(vocab *Vocabulary, thousandsThreshold float64) *Parser {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if thousandsThreshold < 0 {
		thousandsThreshold = DefaultThousandsThreshold
	}
	return &Parser{
		vocab:              vocab,
		thousandsThreshold: thousandsThreshold,
	}
}

// Vocabulary returns the location vocabulary in use
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// Parse extracts a chat filter: intent words first, then location, bedrooms and price.
func (p *Parser) Parse(text string) *model.SearchFilter {
	filter := model.NewSearchFilter()
	lower := normalize(text)
	if lower == "" {
		return filter
	}

	if containsAny(lower, savedIntentWords) {
		filter.Action = model.ActionSaved
		return filter
	}
	if containsAny(lower, showAllIntentWords) {
		return filter
	}

	if label, ok := p.vocab.Find(lower); ok {
		filter.Location = model.StringPtr(label)
	}

	ex := p.extract(lower)
	filter.Bedrooms = ex.bedrooms
	filter.MaxPrice = ex.maxPrice
	return filter
}

// ParseInstant extracts the instant search form: bedrooms, price and the
// leftover free text used for substring search. Locations stay in the free text.
func (p *Parser) ParseInstant(text string) *model.SearchFilter {
	filter := model.NewSearchFilter()
	lower := normalize(text)
	if lower == "" {
		return filter
	}

	ex := p.extract(lower)
	filter.Bedrooms = ex.bedrooms
	filter.MaxPrice = ex.maxPrice
	filter.FreeText = cleanFreeText(ex.rest)
	return filter
}

type extraction struct {
	bedrooms *int
	maxPrice *float64
	rest     string
}

// extract pulls bedrooms then price out of lowercased text. The bedroom span is
// blanked before price matching so "3 beds" is never read as a budget.
func (p *Parser) extract(lower string) extraction {
	var ex extraction
	working := lower

	if loc := bedroomPattern.FindStringSubmatchIndex(working); loc != nil {
		if n, err := strconv.Atoi(working[loc[2]:loc[3]]); err == nil {
			ex.bedrooms = model.IntPtr(n)
		}
		working = blank(working, loc[0], loc[1])
	}

	for _, m := range pricePattern.FindAllStringSubmatchIndex(working, -1) {
		qualifier := group(working, m, 1)
		dollar := group(working, m, 2)
		suffix := strings.ToLower(group(working, m, 4))
		if qualifier == "" && dollar == "" && suffix == "" {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(group(working, m, 3), ",", ""), 64)
		if err != nil {
			continue
		}
		price := p.resolvePrice(amount, suffix)
		if math.IsInf(price, 0) || math.IsNaN(price) {
			continue
		}
		ex.maxPrice = &price
		working = blank(working, m[0], m[1])
		break
	}

	ex.rest = working
	return ex
}

// resolvePrice applies unit suffixes, then the small-number heuristic, and rounds
func (p *Parser) resolvePrice(amount float64, suffix string) float64 {
	switch suffix {
	case "k", "thousand":
		amount *= 1000
	case "m", "million":
		amount *= 1000000
	case "lac", "lakh", "lakhs":
		amount *= 100000
	default:
		if amount < p.thousandsThreshold {
			amount *= 1000
		}
	}
	return math.Round(amount)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(text)))
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

func blank(s string, start, end int) string {
	return s[:start] + " " + s[end:]
}

func cleanFreeText(s string) string {
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = stopWordPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

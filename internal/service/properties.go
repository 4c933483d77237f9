package service

import (
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/parser"
	"propertychat/internal/utils"
)

// PropertyService serves direct catalog listing and instant search
type PropertyService struct {
	catalog CatalogReader
	parser  *parser.Parser
}

// NewPropertyService creates a new property service
func NewPropertyService(catalog CatalogReader, p *parser.Parser) *PropertyService {
	return &PropertyService{catalog: catalog, parser: p}
}

// List runs the direct match only; there is no relaxation on this path.
// A non-empty query is parsed with the instant search form and its bedrooms,
// price and free text are added to the explicit filter.
func (s *PropertyService) List(filter *model.SearchFilter, query string) []model.Property {
	if filter == nil {
		filter = model.NewSearchFilter()
	}

	if query = strings.TrimSpace(query); query != "" {
		instant := s.parser.ParseInstant(query)
		filter = filter.Clone()
		if filter.Bedrooms == nil {
			filter.Bedrooms = instant.Bedrooms
		}
		if filter.MaxPrice == nil {
			filter.MaxPrice = instant.MaxPrice
		}
		filter.FreeText = instant.FreeText
	}

	results := FilterProperties(s.catalog.All(), filter)
	if filter.FreeText == "" {
		return results
	}

	out := results[:0]
	for _, p := range results {
		if MatchesFreeText(&p, filter.FreeText) {
			out = append(out, p)
		}
	}
	return out
}

// MatchesFreeText checks the text against title, location and amenities (with aliases)
func MatchesFreeText(p *model.Property, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), text) || strings.Contains(strings.ToLower(p.Location), text) {
		return true
	}
	return utils.MatchAnyAmenity(text, p.Amenities)
}

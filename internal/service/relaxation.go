package service

import (
	"fmt"
	"log"

	"propertychat/internal/model"
)

// Match kinds reported in MatchResult.Kind
const (
	MatchExact          = "exact"
	MatchDropBedrooms   = "drop_bedrooms"
	MatchDropLocation   = "drop_location"
	MatchCatalogDefault = "catalog"
)

// RelaxationRule is one step of the relaxation policy. Rules are tried in order
// once the direct match is empty; the first rule whose Relax yields results wins.
type RelaxationRule struct {
	Name      string
	Applies   func(f *model.SearchFilter) bool
	Relax     func(f *model.SearchFilter, catalog []model.Property) []model.Property
	Rationale func(f *model.SearchFilter, results []model.Property) string
}

// MatchResult is the outcome of matching a filter against the catalog
type MatchResult struct {
	Results   []model.Property
	Rationale string // empty for direct matches
	Kind      string
}

// Relaxed reports whether any constraint was dropped
func (m *MatchResult) Relaxed() bool {
	return m.Kind != MatchExact
}

// DefaultRelaxationRules drops bedrooms within the location, then the location,
// and finally falls back to the entire catalog.
func DefaultRelaxationRules() []RelaxationRule {
	return []RelaxationRule{
		{
			Name: MatchDropBedrooms,
			Applies: func(f *model.SearchFilter) bool {
				return f.Bedrooms != nil && f.Location != nil
			},
			Relax: func(f *model.SearchFilter, catalog []model.Property) []model.Property {
				return FilterProperties(catalog, &model.SearchFilter{Location: f.Location})
			},
			Rationale: func(f *model.SearchFilter, results []model.Property) string {
				return fmt.Sprintf("There are no %d+ bedroom properties in %s. The best option there is a %d bedroom property. Here's what's available:",
					*f.Bedrooms, *f.Location, maxBedrooms(results))
			},
		},
		{
			Name: MatchDropLocation,
			Applies: func(f *model.SearchFilter) bool {
				return f.Bedrooms != nil
			},
			Relax: func(f *model.SearchFilter, catalog []model.Property) []model.Property {
				return FilterProperties(catalog, &model.SearchFilter{Bedrooms: f.Bedrooms})
			},
			Rationale: func(f *model.SearchFilter, _ []model.Property) string {
				where := "that area"
				if f.Location != nil {
					where = *f.Location
				}
				return fmt.Sprintf("No %d+ bedroom properties in %s, but I found some in other locations:", *f.Bedrooms, where)
			},
		},
		{
			Name:    MatchCatalogDefault,
			Applies: func(*model.SearchFilter) bool { return true },
			Relax: func(_ *model.SearchFilter, catalog []model.Property) []model.Property {
				return catalog
			},
			Rationale: func(*model.SearchFilter, []model.Property) string {
				return "I couldn't find exact matches for your criteria. Try adjusting your filters (e.g., different location or price). 🏠"
			},
		},
	}
}

// RelaxationEngine runs the direct match and the relaxation policy
type RelaxationEngine struct {
	rules []RelaxationRule
}

// NewRelaxationEngine creates an engine. A nil rule list uses DefaultRelaxationRules.
func NewRelaxationEngine(rules []RelaxationRule) *RelaxationEngine {
	if rules == nil {
		rules = DefaultRelaxationRules()
	}
	return &RelaxationEngine{rules: rules}
}

// Match filters the catalog; on an empty result it relaxes constraints rule by rule.
func (e *RelaxationEngine) Match(filter *model.SearchFilter, catalog []model.Property) *MatchResult {
	if results := FilterProperties(catalog, filter); len(results) > 0 {
		return &MatchResult{Results: results, Kind: MatchExact}
	}

	for _, rule := range e.rules {
		if !rule.Applies(filter) {
			continue
		}
		results := rule.Relax(filter, catalog)
		if len(results) == 0 {
			continue
		}
		log.Printf("🔁 No direct matches, relaxed with rule %s (%d results)", rule.Name, len(results))
		return &MatchResult{
			Results:   results,
			Rationale: rule.Rationale(filter, results),
			Kind:      rule.Name,
		}
	}

	// Only reachable with an empty catalog or a rule list without a catch-all
	return &MatchResult{Results: []model.Property{}, Kind: MatchCatalogDefault}
}

// FilterProperties returns the properties matching filter, in catalog order
func FilterProperties(catalog []model.Property, filter *model.SearchFilter) []model.Property {
	results := make([]model.Property, 0, len(catalog))
	for i := range catalog {
		if filter.Matches(&catalog[i]) {
			results = append(results, catalog[i])
		}
	}
	return results
}

func maxBedrooms(props []model.Property) int {
	best := 0
	for _, p := range props {
		if p.Bedrooms > best {
			best = p.Bedrooms
		}
	}
	return best
}

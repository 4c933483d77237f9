package utils

import (
	"strings"
)

// amenityAliases maps a search keyword to the spellings listings use for it
var amenityAliases = map[string][]string{
	"pool":       {"swimming pool", "pool"},
	"gym":        {"gym", "gymnasium", "fitness", "fitness center"},
	"aircon":     {"air conditioner", "air conditioning", "aircon", "a/c"},
	"ac":         {"air conditioner", "air conditioning", "a/c"},
	"washer":     {"washer", "washing machine", "washer/dryer", "laundry"},
	"laundry":    {"laundry", "washer", "washer/dryer"},
	"parking":    {"parking", "garage", "car park", "covered parking"},
	"garage":     {"garage", "parking"},
	"security":   {"security", "doorman", "concierge", "24-hour security"},
	"doorman":    {"doorman", "concierge"},
	"balcony":    {"balcony", "terrace", "patio"},
	"terrace":    {"terrace", "balcony", "rooftop"},
	"view":       {"view", "ocean view", "city view", "skyline"},
	"pets":       {"pet friendly", "pets allowed"},
	"pet":        {"pet friendly", "pets allowed"},
	"garden":     {"garden", "yard", "backyard"},
	"yard":       {"yard", "backyard", "garden"},
	"fireplace":  {"fireplace"},
	"elevator":   {"elevator", "lift"},
	"furnished":  {"furnished", "fully furnished"},
	"playground": {"playground", "kids playground"},
}

// FuzzyMatchAmenity reports whether a search term matches an amenity,
// directly or through a known alias.
func FuzzyMatchAmenity(searchTerm, amenity string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	amenityLower := strings.ToLower(strings.TrimSpace(amenity))
	if searchLower == "" || amenityLower == "" {
		return false
	}

	if strings.Contains(amenityLower, searchLower) {
		return true
	}

	for _, word := range strings.Fields(searchLower) {
		for _, alias := range amenityAliases[word] {
			if strings.Contains(amenityLower, alias) {
				return true
			}
		}
	}

	return false
}

// MatchAnyAmenity reports whether any amenity in the list matches the term
func MatchAnyAmenity(searchTerm string, amenities []string) bool {
	for _, a := range amenities {
		if FuzzyMatchAmenity(searchTerm, a) {
			return true
		}
	}
	return false
}

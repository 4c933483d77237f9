package service

import (
	"sort"

	"propertychat/internal/model"
)

// RankedProperty is a property with its preview score
type RankedProperty struct {
	model.Property
	Score float64
}

// Ranker scores matched properties to choose the previews shown to the phrasing delegate.
// It never reorders the result list returned to the caller.
type Ranker struct {
	weightPrice    float64
	weightBedrooms float64
	previewCount   int
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightPrice, weightBedrooms float64, previewCount int) *Ranker {
	if previewCount <= 0 {
		previewCount = 3
	}
	return &Ranker{
		weightPrice:    weightPrice,
		weightBedrooms: weightBedrooms,
		previewCount:   previewCount,
	}
}

// Top returns the best previewCount properties, ties kept in catalog order
func (r *Ranker) Top(props []model.Property, filter *model.SearchFilter) []RankedProperty {
	ranked := make([]RankedProperty, 0, len(props))
	for _, p := range props {
		ranked = append(ranked, RankedProperty{
			Property: p,
			Score: r.weightPrice*r.calculatePriceScore(p.Price, filter) +
				r.weightBedrooms*r.calculateBedroomScore(p.Bedrooms, filter),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > r.previewCount {
		ranked = ranked[:r.previewCount]
	}
	return ranked
}

// calculatePriceScore calculates how well the price matches the user's budget
func (r *Ranker) calculatePriceScore(price float64, filter *model.SearchFilter) float64 {
	if filter == nil || (filter.MinPrice == nil && filter.MaxPrice == nil) {
		return 1.0 // Full score if no price filter
	}

	if filter.MinPrice != nil && price < *filter.MinPrice {
		return 0.0
	}
	if filter.MaxPrice == nil {
		return 1.0
	}
	if price > *filter.MaxPrice || *filter.MaxPrice == 0 {
		return 0.0
	}

	// Closer to max is better: the budget is used, not wasted
	return price / *filter.MaxPrice
}

// calculateBedroomScore prefers exact counts over larger units
func (r *Ranker) calculateBedroomScore(bedrooms int, filter *model.SearchFilter) float64 {
	if filter == nil || filter.Bedrooms == nil {
		return 1.0
	}
	want := *filter.Bedrooms
	if bedrooms < want {
		return 0.0
	}
	return 1.0 / float64(1+bedrooms-want)
}

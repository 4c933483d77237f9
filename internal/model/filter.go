package model

// SearchAction tells the chat pipeline what the user asked for
type SearchAction string

const (
	ActionSearch SearchAction = "search"
	ActionSaved  SearchAction = "saved"
)

// SearchFilter is the structured criteria extracted from free text.
// A filter with every field empty matches the whole catalog.
type SearchFilter struct {
	Location *string      `json:"location,omitempty" validate:"omitempty,min=1,max=100"`
	MinPrice *float64     `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice *float64     `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	Bedrooms *int         `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	Action   SearchAction `json:"action" validate:"omitempty,oneof=search saved"`

	// FreeText is leftover text for instant substring search; never sent over the chat contract.
	FreeText string `json:"-"`
}

// NewSearchFilter returns an empty search filter
func NewSearchFilter() *SearchFilter {
	return &SearchFilter{Action: ActionSearch}
}

// HasConstraints reports whether at least one of location, maxPrice or bedrooms is set.
// Only such filters are remembered for follow-ups and trigger relaxation.
func (f *SearchFilter) HasConstraints() bool {
	return f != nil && (f.Location != nil || f.MaxPrice != nil || f.Bedrooms != nil)
}

// IsEmpty reports whether the filter matches everything
func (f *SearchFilter) IsEmpty() bool {
	return f == nil || (!f.HasConstraints() && f.MinPrice == nil && f.FreeText == "" && !f.IsSaved())
}

// IsSaved reports whether the user asked for their saved list
func (f *SearchFilter) IsSaved() bool {
	return f != nil && f.Action == ActionSaved
}

// Clone returns a deep copy so stored filters cannot be mutated by callers
func (f *SearchFilter) Clone() *SearchFilter {
	if f == nil {
		return nil
	}
	out := &SearchFilter{Action: f.Action, FreeText: f.FreeText}
	if f.Location != nil {
		v := *f.Location
		out.Location = &v
	}
	if f.MinPrice != nil {
		v := *f.MinPrice
		out.MinPrice = &v
	}
	if f.MaxPrice != nil {
		v := *f.MaxPrice
		out.MaxPrice = &v
	}
	if f.Bedrooms != nil {
		v := *f.Bedrooms
		out.Bedrooms = &v
	}
	if out.Action == "" {
		out.Action = ActionSearch
	}
	return out
}

// Matches applies location (substring), price bounds (inclusive) and bedrooms (at least).
// FreeText and Action are ignored here.
func (f *SearchFilter) Matches(p *Property) bool {
	if f == nil {
		return true
	}
	if f.Location != nil && !p.InLocation(*f.Location) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Bedrooms != nil && p.Bedrooms < *f.Bedrooms {
		return false
	}
	return true
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

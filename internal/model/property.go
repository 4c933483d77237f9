package model

import "strings"

// Property is a single catalog listing. The catalog is read-only after load.
type Property struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Location  string   `json:"location"`
	Price     float64  `json:"price"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	Size      float64  `json:"size"`
	Amenities []string `json:"amenities"`
	Image     string   `json:"image,omitempty"`
	Images    []string `json:"images,omitempty"`
}

// InLocation reports whether the property location contains loc, ignoring case
func (p *Property) InLocation(loc string) bool {
	return strings.Contains(strings.ToLower(p.Location), strings.ToLower(loc))
}

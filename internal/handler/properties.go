package handler

import (
	"net/http"
	"strconv"

	"propertychat/internal/model"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
)

// PropertyHandler serves the catalog listing
type PropertyHandler struct {
	propertyService *service.PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// List handles GET /api/properties?location=&minPrice=&maxPrice=&bedrooms=&q=
func (h *PropertyHandler) List(c *gin.Context) {
	filter := model.NewSearchFilter()

	if location := c.Query("location"); location != "" {
		filter.Location = model.StringPtr(location)
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + p.name})
			return
		}
		*p.dst = &v
	}
	if raw := c.Query("bedrooms"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bedrooms"})
			return
		}
		filter.Bedrooms = &n
	}

	c.JSON(http.StatusOK, h.propertyService.List(filter, c.Query("q")))
}

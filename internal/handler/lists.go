package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"propertychat/internal/model"
	"propertychat/internal/repository"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// listMessages holds the acknowledgement texts of one list kind
type listMessages struct {
	exists  string
	added   string
	removed string
	cleared string
}

var messagesByKind = map[repository.ListKind]listMessages{
	repository.ListSaved: {
		exists:  "Already saved",
		added:   "Saved!",
		removed: "Removed",
	},
	repository.ListComparison: {
		exists:  "Already in comparison",
		added:   "Added to comparison!",
		removed: "Removed from comparison",
		cleared: "Comparison list cleared",
	},
}

// ListHandler handles one per-user list (saved or comparison)
type ListHandler struct {
	listService *service.ListService
	kind        repository.ListKind
	messages    listMessages
}

// NewListHandler creates a handler for the given list kind
func NewListHandler(listService *service.ListService, kind repository.ListKind) *ListHandler {
	return &ListHandler{
		listService: listService,
		kind:        kind,
		messages:    messagesByKind[kind],
	}
}

// Add handles POST /api/saved and POST /api/comparison
func (h *ListHandler) Add(c *gin.Context) {
	var req model.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	added, err := h.listService.Add(c.Request.Context(), h.kind, req.Username, req.PropertyID)
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	case errors.Is(err, repository.ErrComparisonFull):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 3 properties for comparison"})
		return
	case err != nil:
		h.databaseError(c, err)
		return
	}

	if !added {
		c.JSON(http.StatusOK, model.MessageResponse{Message: h.messages.exists})
		return
	}
	c.JSON(http.StatusCreated, model.MessageResponse{Message: h.messages.added})
}

// Get handles GET /api/saved?username= and GET /api/comparison?username=
func (h *ListHandler) Get(c *gin.Context) {
	props, err := h.listService.Properties(c.Request.Context(), h.kind, c.Query("username"))
	if errors.Is(err, service.ErrUsernameRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}
	if err != nil {
		h.databaseError(c, err)
		return
	}
	if props == nil {
		props = []model.Property{}
	}
	c.JSON(http.StatusOK, props)
}

// Remove handles DELETE /api/saved/:propertyId and DELETE /api/comparison/:propertyId
func (h *ListHandler) Remove(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	err = h.listService.Remove(c.Request.Context(), h.kind, c.Query("username"), propertyID)
	if errors.Is(err, service.ErrUsernameRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}
	if err != nil {
		h.databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: h.messages.removed})
}

// Clear handles DELETE /api/comparison
func (h *ListHandler) Clear(c *gin.Context) {
	err := h.listService.Clear(c.Request.Context(), h.kind, c.Query("username"))
	if errors.Is(err, service.ErrUsernameRequired) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}
	if err != nil {
		h.databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: h.messages.cleared})
}

func (h *ListHandler) databaseError(c *gin.Context, err error) {
	log.Printf("❌ %s list (%s) failed: %v", h.kind, h.listService.StoreName(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

// bindErrorMessage maps binding failures to the field-level messages clients expect
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "PropertyID":
			return "Property ID required"
		case "Username":
			return "Username required"
		}
	}
	return "Invalid request: " + err.Error()
}

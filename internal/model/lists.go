package model

import "time"

// ListRequest adds a property to a per-user list (saved or comparison)
type ListRequest struct {
	PropertyID int64  `json:"propertyId" binding:"required,gt=0"`
	Username   string `json:"username" binding:"required"`
}

// ListEntry is one row of a saved or comparison list
type ListEntry struct {
	PropertyID int64     `json:"propertyId" db:"property_id"`
	Username   string    `json:"username" db:"username"`
	AddedAt    time.Time `json:"addedAt" db:"added_at"`
}

// MessageResponse is the plain acknowledgement returned by list endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

package handlers

import (
	"net/http"

	"ride-booking-api/models"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
)

type LocationRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Validate checks a full location; every field is required.
func (r LocationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Address, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Latitude, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// LocationPatch is a partial update; absent fields are left alone.
type LocationPatch LocationRequest

func (r LocationPatch) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Address, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.Store.ListLocations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(locations), "locations": locations})
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req LocationRequest
	if !h.bind(c, &req) {
		return
	}
	loc := &models.DropoffLocation{
		Name:      *req.Name,
		Address:   *req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if err := h.Store.CreateLocation(c.Request.Context(), loc); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Location created successfully", "location": loc})
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := parseLocationID(c)
	if !ok {
		return
	}
	var req LocationPatch
	if !h.bind(c, &req) {
		return
	}
	loc, err := h.Store.UpdateLocation(c.Request.Context(), id, store.LocationUpdate{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated successfully", "location": loc})
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := parseLocationID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteLocation(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
}

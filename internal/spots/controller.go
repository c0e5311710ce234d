package spots

import (
	"errors"
	"net/http"
	"strconv"

	"parkly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// ParseID reads a positive integer path parameter.
func ParseID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid "+name, nil, "must be a positive integer")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrSpotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSpot), errors.Is(err, ErrDuplicateName), errors.Is(err, ErrSpotInUse):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) GetLocations(ctx *gin.Context) {
	locations, err := c.service.GetLocations(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get locations", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Locations retrieved successfully", locations, nil)
}

func (c *Controller) GetLocation(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	location, err := c.service.GetLocation(ctx.Request.Context(), id)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to get location", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Location retrieved successfully", location, nil)
}

func (c *Controller) GetSpots(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var filters SpotFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	spots, err := c.service.GetSpots(ctx.Request.Context(), id, filters)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to get spots", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Spots retrieved successfully", spots, nil)
}

func (c *Controller) GetSpot(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	spot, err := c.service.GetSpot(ctx.Request.Context(), id)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to get spot", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Spot retrieved successfully", spot, nil)
}

// ADMIN

func (c *Controller) CreateLocation(ctx *gin.Context) {
	var req CreateLocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	location, err := c.service.CreateLocation(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to create location", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Location created successfully", location, nil)
}

func (c *Controller) CreateSpots(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req CreateSpotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	spots, err := c.service.CreateSpots(ctx.Request.Context(), id, req)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to create spots", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Spots created successfully", spots, nil)
}

func (c *Controller) UpdateSpotStatus(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateSpotStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	spot, err := c.service.SetSpotStatus(ctx.Request.Context(), id, Status(req.Status))
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to update spot status", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Spot status updated successfully", spot, nil)
}

package vehicles

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

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrVehicleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicatePlate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) RegisterVehicle(ctx *gin.Context) {
	var req RegisterVehicleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	vehicle, err := c.service.Register(ctx.Request.Context(), ctx.GetString("user_id"), req)
	if err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to register vehicle", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Vehicle registered successfully", vehicle, nil)
}

func (c *Controller) GetMyVehicles(ctx *gin.Context) {
	list, err := c.service.ListMine(ctx.Request.Context(), ctx.GetString("user_id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get vehicles", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Vehicles retrieved successfully", list, nil)
}

func (c *Controller) DeleteVehicle(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid vehicle ID", nil, "must be a positive integer")
		return
	}

	if err := c.service.Remove(ctx.Request.Context(), ctx.GetString("user_id"), id); err != nil {
		response.RespondJSON(ctx, "error", statusFor(err), "Failed to delete vehicle", nil, err.Error())
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Vehicle deleted successfully", nil, nil)
}

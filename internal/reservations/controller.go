package reservations

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const idempotencyHeader = "Idempotency-Key"

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			if name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &Controller{
		service:   service,
		validator: v,
	}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(e *Error) int {
	switch e.Kind {
	case ErrInvalidRequest, ErrNoAvailability:
		return http.StatusBadRequest
	case ErrConflict, ErrAlreadyTerminal:
		return http.StatusConflict
	case ErrNotFound:
		return http.StatusNotFound
	case ErrForbidden:
		return http.StatusForbidden
	}
	if e.Reason == ReasonTimeout {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(ctx *gin.Context, err error) {
	e := classify(err)
	ctx.JSON(StatusFor(e), toErrorResponse(e))
}

func principalFrom(ctx *gin.Context) Principal {
	return Principal{
		UserID: ctx.GetString("user_id"),
		Role:   ctx.GetString("user_role"),
	}
}

func (c *Controller) validate(req interface{}) error {
	err := c.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return invalid("%s is required", fe.Field())
		}
		return invalid("%s failed %s validation", fe.Field(), fe.Tag())
	}
	return invalid("invalid request")
}

func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, invalid("malformed request body"))
		return
	}
	if err := c.validate(&req); err != nil {
		respondError(ctx, err)
		return
	}

	result, err := c.service.Create(ctx.Request.Context(), principalFrom(ctx), req, ctx.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(ctx, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	ctx.JSON(status, toCreatedResponse(result.Reservation))
}

func (c *Controller) GetMyReservations(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, invalid("invalid query parameters"))
		return
	}

	list, err := c.service.ListMine(ctx.Request.Context(), principalFrom(ctx), query.Page, query.Limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

func (c *Controller) GetReservation(ctx *gin.Context) {
	detail, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"), principalFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func (c *Controller) CancelReservation(ctx *gin.Context) {
	res, err := c.service.Cancel(ctx.Request.Context(), ctx.Param("id"), principalFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetAvailability(ctx *gin.Context) {
	locationID, ok := c.locationID(ctx)
	if !ok {
		return
	}

	var query AvailabilityQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, invalid("invalid query parameters"))
		return
	}
	if err := c.validate(&query); err != nil {
		respondError(ctx, err)
		return
	}

	out, err := c.service.Availability(ctx.Request.Context(), locationID, query)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

func (c *Controller) GetQuote(ctx *gin.Context) {
	locationID, ok := c.locationID(ctx)
	if !ok {
		return
	}

	var query QuoteQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondError(ctx, invalid("invalid query parameters"))
		return
	}
	if err := c.validate(&query); err != nil {
		respondError(ctx, err)
		return
	}

	out, err := c.service.Quote(ctx.Request.Context(), locationID, query)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

// ADMIN

func (c *Controller) ActivateReservation(ctx *gin.Context) {
	actor := fmt.Sprintf("admin:%s", principalFrom(ctx).UserID)
	res, err := c.service.Activate(ctx.Request.Context(), ctx.Param("id"), actor)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetAllReservations(ctx *gin.Context) {
	var filters AdminListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		respondError(ctx, invalid("invalid query parameters"))
		return
	}
	if err := c.validate(&filters); err != nil {
		respondError(ctx, err)
		return
	}

	list, err := c.service.ListAll(ctx.Request.Context(), filters)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

func (c *Controller) RunSweep(ctx *gin.Context) {
	report, err := c.service.Sweep(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, SweepResponse(report))
}

func (c *Controller) locationID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(ctx, invalid("location id must be a positive integer"))
		return 0, false
	}
	return id, true
}

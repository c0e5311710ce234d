package spots

import "github.com/shopspring/decimal"

type CreateLocationRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Address string `json:"address" validate:"max=500"`
	City    string `json:"city" validate:"max=100"`
}

// CreateSpotsRequest adds Count spots numbered Prefix-StartAt, Prefix-StartAt+1, ...
type CreateSpotsRequest struct {
	Zone       string          `json:"zone" validate:"required"`
	Prefix     string          `json:"prefix" validate:"omitempty,max=8,alphanum"`
	Count      int             `json:"count" validate:"required,min=1,max=500"`
	StartAt    int             `json:"startAt" validate:"min=0"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

type UpdateSpotStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available occupied reserved maintenance"`
}

type SpotFilters struct {
	Zone   string `form:"zone"`
	Status string `form:"status"`
}

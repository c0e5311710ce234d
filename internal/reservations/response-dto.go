package reservations

import (
	"time"

	"parkly/internal/spots"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatedResponse is the 201 body for a committed allocation.
type CreatedResponse struct {
	ReservationID uuid.UUID       `json:"reservationId"`
	SpotID        int64           `json:"spotId"`
	SpotNumber    string          `json:"spotNumber"`
	Zone          spots.Zone      `json:"zone"`
	StartTime     time.Time       `json:"startTime"`
	EndTime       time.Time       `json:"endTime"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Status        Status          `json:"status"`
}

func toCreatedResponse(res *Reservation) CreatedResponse {
	return CreatedResponse{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		Zone:          res.Zone,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		TotalCost:     res.TotalCost,
		Status:        res.Status,
	}
}

// ErrorResponse is the only error shape reservation endpoints return. Detail
// never carries storage error text.
type ErrorResponse struct {
	ErrorKind Kind   `json:"errorKind"`
	Reason    Reason `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func toErrorResponse(e *Error) ErrorResponse {
	out := ErrorResponse{ErrorKind: e.Kind, Reason: e.Reason, Detail: e.Detail}
	if e.Kind == ErrConflict {
		// a lost race is retryable as-is; nothing more to say
		out.Detail = ""
	}
	return out
}

type ReservationDetailResponse struct {
	Reservation
	History []Transition `json:"history"`
}

type ReservationListResponse struct {
	Reservations []Reservation `json:"reservations"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

type AvailableSpot struct {
	SpotID     int64           `json:"spotId"`
	SpotNumber string          `json:"spotNumber"`
	Zone       spots.Zone      `json:"zone"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

type AvailabilityResponse struct {
	LocationID int64           `json:"locationId"`
	Zone       spots.Zone      `json:"zone,omitempty"`
	StartTime  time.Time       `json:"startTime"`
	EndTime    time.Time       `json:"endTime"`
	Spots      []AvailableSpot `json:"spots"`
}

type QuoteResponse struct {
	SpotID     int64           `json:"spotId"`
	SpotNumber string          `json:"spotNumber"`
	Zone       spots.Zone      `json:"zone"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	StartTime  time.Time       `json:"startTime"`
	EndTime    time.Time       `json:"endTime"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

type SweepResponse struct {
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
	Failed    int `json:"failed"`
}

package reservations

import (
	"parkly/internal/spots"
	"parkly/internal/timerange"
)

// CreateReservationRequest is the POST /reservations body. Exactly one of
// SpotID or Zone must be set.
type CreateReservationRequest struct {
	LocationID int64   `json:"locationId" validate:"required,gt=0"`
	SpotID     *int64  `json:"spotId,omitempty" validate:"omitempty,gt=0"`
	Zone       *string `json:"zone,omitempty"`
	VehicleID  int64   `json:"vehicleId" validate:"required,gt=0"`
	StartTime  string  `json:"startTime" validate:"required"`
	EndTime    string  `json:"endTime" validate:"required"`
}

func (r CreateReservationRequest) toRequest(principal Principal, idempotencyKey string) (Request, error) {
	target, err := parseTarget(r.SpotID, r.Zone)
	if err != nil {
		return Request{}, err
	}
	window, err := parseRange(r.StartTime, r.EndTime)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Principal:      principal,
		LocationID:     r.LocationID,
		Target:         target,
		VehicleID:      r.VehicleID,
		Range:          window,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func parseTarget(spotID *int64, zone *string) (Target, error) {
	switch {
	case spotID != nil && zone != nil:
		return nil, invalid("spotId and zone are mutually exclusive")
	case spotID != nil:
		return BySpot{SpotID: *spotID}, nil
	case zone != nil:
		z, err := spots.ParseZone(*zone)
		if err != nil {
			return nil, invalid("%v", err)
		}
		return ByZone{Zone: z}, nil
	default:
		return nil, invalid("exactly one of spotId or zone is required")
	}
}

type AvailabilityQuery struct {
	Zone      string `form:"zone"`
	StartTime string `form:"startTime" validate:"required"`
	EndTime   string `form:"endTime" validate:"required"`
}

func (q AvailabilityQuery) parse() (timerange.Range, spots.Zone, error) {
	r, err := parseRange(q.StartTime, q.EndTime)
	if err != nil {
		return r, "", err
	}
	if q.Zone == "" {
		return r, "", nil
	}
	zone, err := spots.ParseZone(q.Zone)
	if err != nil {
		return r, "", invalid("%v", err)
	}
	return r, zone, nil
}

type QuoteQuery struct {
	SpotID    *int64  `form:"spotId"`
	Zone      *string `form:"zone"`
	StartTime string  `form:"startTime" validate:"required"`
	EndTime   string  `form:"endTime" validate:"required"`
}

func (q QuoteQuery) parse() (Target, timerange.Range, error) {
	target, err := parseTarget(q.SpotID, q.Zone)
	if err != nil {
		return nil, timerange.Range{}, err
	}
	r, err := parseRange(q.StartTime, q.EndTime)
	return target, r, err
}

type ListQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type AdminListFilters struct {
	UserID     string `form:"userId"`
	LocationID int64  `form:"locationId"`
	SpotID     int64  `form:"spotId"`
	Status     string `form:"status" validate:"omitempty,oneof=pending active completed cancelled"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

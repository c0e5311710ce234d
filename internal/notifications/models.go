package notifications

import (
	"encoding/json"
	"strconv"
	"time"

	"parkly/internal/reservations"
	"parkly/internal/spots"

	"github.com/shopspring/decimal"
)

const messageVersion = "1"

// ReservationMessage is the wire form of a lifecycle event on the events topic.
type ReservationMessage struct {
	EventType     reservations.EventType `json:"eventType"`
	ReservationID string                 `json:"reservationId"`
	UserID        string                 `json:"userId"`
	LocationID    int64                  `json:"locationId"`
	SpotID        int64                  `json:"spotId"`
	SpotNumber    string                 `json:"spotNumber"`
	Zone          spots.Zone             `json:"zone"`
	VehicleID     int64                  `json:"vehicleId"`
	StartTime     time.Time              `json:"startTime"`
	EndTime       time.Time              `json:"endTime"`
	Status        reservations.Status    `json:"status"`
	TotalCost     decimal.Decimal        `json:"totalCost"`
	Actor         string                 `json:"actor"`
	OccurredAt    time.Time              `json:"occurredAt"`
}

func NewReservationMessage(evt reservations.Event) *ReservationMessage {
	res := evt.Reservation
	return &ReservationMessage{
		EventType:     evt.Type,
		ReservationID: res.ID.String(),
		UserID:        res.UserID,
		LocationID:    res.LocationID,
		SpotID:        res.SpotID,
		SpotNumber:    res.SpotNumber,
		Zone:          res.Zone,
		VehicleID:     res.VehicleID,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Status:        res.Status,
		TotalCost:     res.TotalCost,
		Actor:         evt.Actor,
		OccurredAt:    evt.OccurredAt,
	}
}

func (m *ReservationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PartitionKey keeps every event for one spot on one partition, in order.
func (m *ReservationMessage) PartitionKey() string {
	return strconv.FormatInt(m.SpotID, 10)
}

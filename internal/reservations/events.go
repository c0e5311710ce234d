package reservations

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventActivated EventType = "reservation.activated"
	EventCancelled EventType = "reservation.cancelled"
	EventCompleted EventType = "reservation.completed"
	EventExpired   EventType = "reservation.expired"
)

// Event is emitted after a ledger change has committed.
type Event struct {
	Type        EventType
	Reservation Reservation
	Actor       string
	OccurredAt  time.Time
}

// EventPublisher ships lifecycle events off-process. Failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, evt Event) error
}

// CatalogCache is told when spot status moved so cached listings can be dropped.
type CatalogCache interface {
	InvalidateLocation(ctx context.Context, locationID int64)
}

// VehicleVerifier confirms the vehicle is registered to the caller.
type VehicleVerifier interface {
	OwnsVehicle(ctx context.Context, userID string, vehicleID int64) (bool, error)
}

package reservations

import (
	"time"

	"parkly/internal/spots"
	"parkly/internal/timerange"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// liveStatuses are the states that hold a spot for their range.
var liveStatuses = []string{string(StatusPending), string(StatusActive)}

// Live reports whether the reservation still blocks its spot.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusActive
}

// CanTransition encodes the forward-only lifecycle. Only an active reservation completes.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Reservation is one row of the ledger. Rows are never deleted; state moves forward only.
type Reservation struct {
	ID             uuid.UUID       `json:"reservationId" gorm:"primaryKey;type:varchar(36)"`
	UserID         string          `json:"userId" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_user_idempotency"`
	LocationID     int64           `json:"locationId" gorm:"not null;index"`
	SpotID         int64           `json:"spotId" gorm:"not null;index:idx_spot_window"`
	SpotNumber     string          `json:"spotNumber" gorm:"type:varchar(20);not null"`
	Zone           spots.Zone      `json:"zone" gorm:"type:varchar(20);not null"`
	VehicleID      int64           `json:"vehicleId" gorm:"not null"`
	StartTime      time.Time       `json:"startTime" gorm:"not null;index:idx_spot_window"`
	EndTime        time.Time       `json:"endTime" gorm:"not null;index:idx_spot_window;index"`
	Status         Status          `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalCost      decimal.Decimal `json:"totalCost" gorm:"type:decimal(12,2);not null"`
	IdempotencyKey *string         `json:"-" gorm:"type:varchar(100);uniqueIndex:idx_user_idempotency"`
	RequestedZone  spots.Zone      `json:"-" gorm:"type:varchar(20)"` // empty when a specific spot was asked for
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	ActivatedAt    *time.Time      `json:"activatedAt,omitempty"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Reservation) Range() timerange.Range {
	return timerange.Range{Start: r.StartTime, End: r.EndTime}
}

// Transition is the append-only audit trail of status changes.
type Transition struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReservationID uuid.UUID `json:"reservationId" gorm:"type:varchar(36);not null;index"`
	FromStatus    Status    `json:"from" gorm:"type:varchar(20)"`
	ToStatus      Status    `json:"to" gorm:"type:varchar(20);not null"`
	Actor         string    `json:"actor" gorm:"type:varchar(64);not null"`
	Note          string    `json:"note,omitempty" gorm:"type:varchar(255)"`
	CreatedAt     time.Time `json:"createdAt"`
}

const (
	ActorSweeper = "system:sweeper"
	ActorPayment = "system:payments"
)

// Target says how the client wants a spot resolved: a specific one or any in a zone.
type Target interface {
	isTarget()
}

type BySpot struct {
	SpotID int64
}

type ByZone struct {
	Zone spots.Zone
}

func (BySpot) isTarget() {}
func (ByZone) isTarget() {}

// Principal is the authenticated caller as supplied by the identity provider.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == "ADMIN"
}

// Request is a validated allocation request.
type Request struct {
	Principal      Principal
	LocationID     int64
	Target         Target
	VehicleID      int64
	Range          timerange.Range
	IdempotencyKey string
}

// Phase tracks one allocation attempt: Validating -> Resolving -> Committing -> Committed | Rejected.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseResolving  Phase = "resolving"
	PhaseCommitting Phase = "committing"
	PhaseCommitted  Phase = "committed"
	PhaseRejected   Phase = "rejected"
)

// Result is what a committed allocation hands back.
type Result struct {
	Reservation *Reservation
	Replayed    bool // true when an earlier reservation with the same idempotency key was returned
}

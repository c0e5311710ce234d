package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkly/internal/pricing"
	"parkly/internal/spots"
	"parkly/internal/timerange"
	"parkly/pkg/logger"

	"github.com/google/uuid"
)

// Options wires the allocator's collaborators. Zero values fall back to defaults;
// Vehicles, Events and Cache may be nil.
type Options struct {
	Timeout   time.Duration
	BatchSize int
	Clock     timerange.Clock
	Pricing   pricing.Calculator
	Vehicles  VehicleVerifier
	Events    EventPublisher
	Cache     CatalogCache
	Logger    *logger.Logger
}

// Allocator turns requests into committed reservations and drives their
// lifecycle. Every write runs under the (location, zone) bucket lock and one
// ledger transaction, so the overlap check and the insert see the same state.
type Allocator struct {
	ledger    Ledger
	index     AvailabilityIndex
	locks     *bucketLocks
	timeout   time.Duration
	batchSize int
	clock     timerange.Clock
	pricing   pricing.Calculator
	vehicles  VehicleVerifier
	events    EventPublisher
	cache     CatalogCache
	log       *logger.Logger
}

func NewAllocator(ledger Ledger, opts Options) *Allocator {
	a := &Allocator{
		ledger:    ledger,
		locks:     newBucketLocks(),
		timeout:   opts.Timeout,
		batchSize: opts.BatchSize,
		clock:     opts.Clock,
		pricing:   opts.Pricing,
		vehicles:  opts.Vehicles,
		events:    opts.Events,
		cache:     opts.Cache,
		log:       opts.Logger,
	}
	if a.clock == nil {
		a.clock = timerange.RealClock{}
	}
	if a.pricing == nil {
		a.pricing = pricing.HourlyCalculator{}
	}
	if a.log == nil {
		a.log = logger.GetDefault().WithComponent("allocator")
	}
	if a.batchSize <= 0 {
		a.batchSize = 200
	}
	return a
}

// Allocate runs one attempt: Validating -> Resolving -> Committing -> Committed | Rejected.
// A rejected attempt leaves the ledger untouched.
func (a *Allocator) Allocate(ctx context.Context, req Request) (*Result, error) {
	begin := time.Now()
	phase := PhaseValidating

	result, err := a.allocate(ctx, req, &phase)
	if err != nil {
		e := a.reject(ctx, err)
		a.log.LogReservationRejected(ctx, req.Principal.UserID, string(e.Kind), string(e.Reason), time.Since(begin))
		a.log.Debug("allocation finished", "phase", PhaseRejected, "failed_in", phase, "kind", e.Kind, "reason", e.Reason)
		return nil, e
	}

	res := result.Reservation
	a.log.Debug("allocation finished", "phase", PhaseCommitted, "replayed", result.Replayed)
	if result.Replayed {
		a.log.Info("idempotent replay", "reservation_id", res.ID.String(), "user_id", res.UserID)
		return result, nil
	}

	a.log.LogReservationCreated(ctx, res.ID.String(), res.UserID, res.SpotID, res.Range().String())
	a.afterCommit(ctx, EventCreated, res, req.Principal.UserID)
	return result, nil
}

func (a *Allocator) allocate(ctx context.Context, req Request, phase *Phase) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if a.vehicles != nil {
		owned, err := a.vehicles.OwnsVehicle(ctx, req.Principal.UserID, req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("vehicle lookup: %w", err)
		}
		if !owned {
			return nil, invalid("vehicle %d is not registered to this account", req.VehicleID)
		}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	*phase = PhaseResolving
	zone, err := a.targetZone(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	unlock, err := a.locks.lock(ctx, bucketKey(req.LocationID, zone))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result Result
	err = a.ledger.Atomic(ctx, func(tx Tx) error {
		if req.IdempotencyKey != "" {
			prior, err := tx.ByIdempotencyKey(req.Principal.UserID, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if prior != nil {
				if !sameRequest(prior, req) {
					return invalid("idempotency key was already used for a different request")
				}
				result = Result{Reservation: prior, Replayed: true}
				return nil
			}
		}

		spot, err := a.index.FindAvailable(tx, req.LocationID, req.Target, req.Range)
		if err != nil {
			return err
		}

		cost, err := a.pricing.Price(spot.HourlyRate, req.Range)
		if err != nil {
			return invalid("%v", err)
		}

		*phase = PhaseCommitting
		now := a.clock.Now()
		res := &Reservation{
			ID:         uuid.New(),
			UserID:     req.Principal.UserID,
			LocationID: req.LocationID,
			SpotID:     spot.ID,
			SpotNumber: spot.SpotNumber,
			Zone:       spot.Zone,
			VehicleID:  req.VehicleID,
			StartTime:  req.Range.Start,
			EndTime:    req.Range.End,
			Status:     StatusPending,
			TotalCost:  cost,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			res.IdempotencyKey = &key
		}
		if t, ok := req.Target.(ByZone); ok {
			res.RequestedZone = t.Zone
		}
		if err := tx.Insert(res, req.Principal.UserID); err != nil {
			return err
		}
		if spot.Status == spots.StatusAvailable {
			if err := tx.SetSpotStatus(spot.ID, spots.StatusReserved); err != nil {
				return err
			}
		}

		result = Result{Reservation: res}
		return nil
	})
	if err != nil {
		if _, domain := AsError(err); !domain && ctx.Err() != nil {
			// drivers report an expired deadline in many shapes
			return nil, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, err
	}
	return &result, nil
}

// sameRequest reports whether req repeats the request that created prior.
func sameRequest(prior *Reservation, req Request) bool {
	if prior.LocationID != req.LocationID || prior.VehicleID != req.VehicleID {
		return false
	}
	if !prior.StartTime.Equal(req.Range.Start) || !prior.EndTime.Equal(req.Range.End) {
		return false
	}
	switch t := req.Target.(type) {
	case BySpot:
		return prior.RequestedZone == "" && prior.SpotID == t.SpotID
	case ByZone:
		return prior.RequestedZone == t.Zone
	default:
		return false
	}
}

func validate(req Request) error {
	if req.Principal.UserID == "" {
		return invalid("missing principal")
	}
	if req.LocationID <= 0 {
		return invalid("locationId must be a positive integer")
	}
	if req.VehicleID <= 0 {
		return invalid("vehicleId must be a positive integer")
	}
	switch t := req.Target.(type) {
	case BySpot:
		if t.SpotID <= 0 {
			return invalid("spotId must be a positive integer")
		}
	case ByZone:
		if !t.Zone.Valid() {
			return invalid("unknown zone %q", t.Zone)
		}
	default:
		return invalid("exactly one of spotId or zone is required")
	}
	if !req.Range.Valid() {
		return invalid("%v", timerange.ErrInvalidRange)
	}
	if len(req.IdempotencyKey) > 100 {
		return invalid("idempotency key is too long")
	}
	return nil
}

// targetZone finds the bucket for a request. A spot's zone never changes, so
// reading it without a lock is safe; a missing spot falls through to the
// index, which reports it properly.
func (a *Allocator) targetZone(ctx context.Context, target Target) (spots.Zone, error) {
	switch t := target.(type) {
	case ByZone:
		return t.Zone, nil
	case BySpot:
		var zone spots.Zone
		err := a.ledger.View(ctx, func(tx Tx) error {
			spot, err := tx.Spot(t.SpotID)
			if errors.Is(err, errSpotMissing) {
				return nil
			}
			if err != nil {
				return err
			}
			zone = spot.Zone
			return nil
		})
		return zone, err
	}
	return "", invalid("exactly one of spotId or zone is required")
}

// reject classifies err and logs storage failures, which never reach the client verbatim.
func (a *Allocator) reject(ctx context.Context, err error) *Error {
	e := classify(err)
	if e.Kind == ErrAllocationFailed {
		a.log.ErrorContext(ctx, "allocation failed", "reason", e.Reason, "error", err)
	}
	return e
}

func (a *Allocator) afterCommit(ctx context.Context, typ EventType, res *Reservation, actor string) {
	if a.cache != nil {
		a.cache.InvalidateLocation(ctx, res.LocationID)
	}
	if a.events == nil {
		return
	}
	evt := Event{Type: typ, Reservation: *res, Actor: actor, OccurredAt: a.clock.Now()}
	if err := a.events.PublishReservationEvent(ctx, evt); err != nil {
		a.log.Warn("failed to publish reservation event", "type", typ, "reservation_id", res.ID.String(), "error", err)
	}
}

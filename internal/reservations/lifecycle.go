package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkly/internal/spots"

	"github.com/google/uuid"
)

// Cancel moves a pending or active reservation to cancelled. Only the owner or
// an admin may cancel. The spot goes back to available when nothing else live covers now.
func (a *Allocator) Cancel(ctx context.Context, id uuid.UUID, principal Principal) (*Reservation, error) {
	current, err := a.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && current.UserID != principal.UserID {
		return nil, newError(ErrForbidden, ReasonNone, "only the owner or an admin can cancel this reservation")
	}

	note := "cancelled by owner"
	if principal.IsAdmin() && current.UserID != principal.UserID {
		note = "cancelled by admin"
	}

	res, err := a.transition(ctx, current, principal.UserID, note, func(res *Reservation) (Status, bool, error) {
		if !res.Status.Live() {
			return "", false, newError(ErrAlreadyTerminal, ReasonNone, fmt.Sprintf("reservation is already %s", res.Status))
		}
		return StatusCancelled, true, nil
	})
	if err != nil {
		return nil, err
	}

	a.log.LogReservationTransition(ctx, res.ID.String(), string(current.Status), string(StatusCancelled), principal.UserID)
	a.afterCommit(ctx, EventCancelled, res, principal.UserID)
	return res, nil
}

// Activate confirms payment: pending -> active. Repeating it on an active
// reservation is a no-op so redelivered payment messages are harmless.
func (a *Allocator) Activate(ctx context.Context, id uuid.UUID, actor string) (*Reservation, error) {
	current, err := a.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	res, err := a.transition(ctx, current, actor, "payment confirmed", func(res *Reservation) (Status, bool, error) {
		switch res.Status {
		case StatusPending:
			changed = true
			return StatusActive, false, nil
		case StatusActive:
			return "", false, nil
		default:
			return "", false, newError(ErrAlreadyTerminal, ReasonNone, fmt.Sprintf("reservation is already %s", res.Status))
		}
	})
	if err != nil {
		return nil, err
	}

	if changed {
		a.log.LogReservationTransition(ctx, res.ID.String(), string(StatusPending), string(StatusActive), actor)
		a.afterCommit(ctx, EventActivated, res, actor)
	}
	return res, nil
}

// SweepReport summarises one completion sweep.
type SweepReport struct {
	Completed int
	Expired   int
	Failed    int
}

// Sweep finishes every live reservation whose range has ended: active ones
// complete, pending ones (never paid) are cancelled. Each runs in its own
// transaction so one bad row does not hold the rest back.
func (a *Allocator) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	now := a.clock.Now()

	var due []Reservation
	err := a.ledger.View(ctx, func(tx Tx) error {
		var err error
		due, err = tx.Due(now, a.batchSize)
		return err
	})
	if err != nil {
		return report, fmt.Errorf("list due reservations: %w", err)
	}

	for i := range due {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		var moved Status
		res, err := a.transition(ctx, &due[i], ActorSweeper, "range ended", func(res *Reservation) (Status, bool, error) {
			if !res.Status.Live() || res.EndTime.After(now) {
				return "", false, nil
			}
			moved = StatusCancelled
			if res.Status == StatusActive {
				moved = StatusCompleted
			}
			return moved, true, nil
		})
		if err != nil {
			report.Failed++
			a.log.Error("sweep failed", "reservation_id", due[i].ID.String(), "error", err)
			continue
		}

		switch moved {
		case StatusCompleted:
			report.Completed++
			a.afterCommit(ctx, EventCompleted, res, ActorSweeper)
		case StatusCancelled:
			report.Expired++
			a.afterCommit(ctx, EventExpired, res, ActorSweeper)
		}
	}

	if report.Completed+report.Expired+report.Failed > 0 {
		a.log.Info("sweep finished", "completed", report.Completed, "expired", report.Expired, "failed", report.Failed)
	}
	return report, nil
}

// OverrideSpotStatus applies an operator status change under the spot's bucket
// lock. A spot with a reservation live right now cannot be marked available.
func (a *Allocator) OverrideSpotStatus(ctx context.Context, spotID int64, status spots.Status) error {
	var spot *spots.Spot
	err := a.ledger.View(ctx, func(tx Tx) error {
		var err error
		spot, err = tx.Spot(spotID)
		return err
	})
	if errors.Is(err, errSpotMissing) {
		return spots.ErrSpotNotFound
	}
	if err != nil {
		return err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	unlock, err := a.locks.lock(ctx, bucketKey(spot.LocationID, spot.Zone))
	if err != nil {
		return err
	}
	defer unlock()

	return a.ledger.Atomic(ctx, func(tx Tx) error {
		if _, err := tx.Spot(spotID); err != nil {
			return err
		}
		if status == spots.StatusAvailable {
			live, err := tx.LiveAt(spotID, a.clock.Now(), uuid.Nil)
			if err != nil {
				return err
			}
			if live {
				return spots.ErrSpotInUse
			}
		}
		return tx.SetSpotStatus(spotID, status)
	})
}

func (a *Allocator) lookup(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := a.ledger.Get(ctx, id)
	if errors.Is(err, errReservationMissing) {
		return nil, newError(ErrNotFound, ReasonNone, "reservation not found")
	}
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// decideFunc picks the next status from the locked row. An empty status means
// leave it alone; release says the spot may be handed back.
type decideFunc func(res *Reservation) (to Status, release bool, err error)

// transition locks the bucket, then the spot row, then the reservation row,
// and applies decide to the fresh copy.
func (a *Allocator) transition(ctx context.Context, current *Reservation, actor, note string, decide decideFunc) (*Reservation, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	unlock, err := a.locks.lock(ctx, bucketKey(current.LocationID, current.Zone))
	if err != nil {
		return nil, classify(err)
	}
	defer unlock()

	var out *Reservation
	err = a.ledger.Atomic(ctx, func(tx Tx) error {
		spot, err := tx.Spot(current.SpotID)
		if err != nil && !errors.Is(err, errSpotMissing) {
			return err
		}

		res, err := tx.Reservation(current.ID)
		if err != nil {
			return err
		}

		to, release, err := decide(res)
		if err != nil {
			return err
		}
		out = res
		if to == "" {
			return nil
		}

		if !res.Status.CanTransition(to) {
			return newError(ErrConflict, ReasonNone, fmt.Sprintf("cannot move a %s reservation to %s", res.Status, to))
		}

		now := a.clock.Now()
		if err := tx.Transition(res, to, actor, note, now); err != nil {
			return err
		}
		if release && spot != nil {
			return releaseSpot(tx, spot, res.ID, now)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// releaseSpot marks the spot available unless it is in maintenance or another
// live reservation still covers now.
func releaseSpot(tx Tx, spot *spots.Spot, exclude uuid.UUID, now time.Time) error {
	if spot.Status == spots.StatusMaintenance || spot.Status == spots.StatusAvailable {
		return nil
	}
	live, err := tx.LiveAt(spot.ID, now, exclude)
	if err != nil {
		return err
	}
	if live {
		return nil
	}
	return tx.SetSpotStatus(spot.ID, spots.StatusAvailable)
}

package reservations

import (
	"errors"
	"fmt"

	"parkly/internal/spots"
	"parkly/internal/timerange"
)

// AvailabilityIndex answers "which spot can take this range". It holds no state;
// every answer comes from the ledger transaction it is given, so under Atomic
// the answer stays true until commit.
type AvailabilityIndex struct{}

// FindAvailable resolves target to one spot at locationID that is free for r.
// For a zone the lowest spot number wins, which keeps allocation deterministic.
func (AvailabilityIndex) FindAvailable(tx Tx, locationID int64, target Target, r timerange.Range) (*spots.Spot, error) {
	switch t := target.(type) {
	case BySpot:
		return findBySpot(tx, locationID, t.SpotID, r)
	case ByZone:
		return findByZone(tx, locationID, t.Zone, r)
	default:
		return nil, invalid("exactly one of spotId or zone is required")
	}
}

func findBySpot(tx Tx, locationID, spotID int64, r timerange.Range) (*spots.Spot, error) {
	spot, err := tx.Spot(spotID)
	if errors.Is(err, errSpotMissing) {
		return nil, noAvailability(ReasonSpotNotFound, fmt.Sprintf("spot %d does not exist", spotID))
	}
	if err != nil {
		return nil, err
	}
	if spot.LocationID != locationID {
		return nil, noAvailability(ReasonWrongLocation, fmt.Sprintf("spot %d is not at location %d", spotID, locationID))
	}
	if !spot.Reservable() {
		return nil, noAvailability(ReasonMaintenance, fmt.Sprintf("spot %s is under maintenance", spot.SpotNumber))
	}

	busy, err := tx.Busy([]int64{spot.ID}, r)
	if err != nil {
		return nil, err
	}
	if busy[spot.ID] {
		return nil, newError(ErrConflict, ReasonOverlap, fmt.Sprintf("spot %s is already reserved for an overlapping time", spot.SpotNumber))
	}
	return spot, nil
}

func findByZone(tx Tx, locationID int64, zone spots.Zone, r timerange.Range) (*spots.Spot, error) {
	candidates, err := tx.ZoneSpots(locationID, zone)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		if c.Reservable() {
			ids = append(ids, c.ID)
		}
	}
	busy, err := tx.Busy(ids, r)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		if candidates[i].Reservable() && !busy[candidates[i].ID] {
			return &candidates[i], nil
		}
	}
	return nil, noAvailability(ReasonZoneExhausted, fmt.Sprintf("no %s spots available for the requested time", zone))
}

// FreeSpots lists every reservable spot in zone (all zones when zone is empty) that is free for r.
// It is a read-only view; nothing is held.
func (AvailabilityIndex) FreeSpots(tx Tx, locationID int64, zone spots.Zone, r timerange.Range) ([]spots.Spot, error) {
	zones := []spots.Zone{zone}
	if zone == "" {
		zones = spots.AllZones
	}

	var free []spots.Spot
	for _, z := range zones {
		candidates, err := tx.ZoneSpots(locationID, z)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		busy, err := tx.Busy(ids, r)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if c.Reservable() && !busy[c.ID] {
				free = append(free, c)
			}
		}
	}
	return free, nil
}

package spots

import (
	"context"
	"fmt"

	"parkly/internal/shared/constants"
	"parkly/pkg/cache"
	"parkly/pkg/logger"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error)
	GetLocation(ctx context.Context, id int64) (*LocationResponse, error)
	GetLocations(ctx context.Context) ([]Location, error)

	CreateSpots(ctx context.Context, locationID int64, req CreateSpotsRequest) ([]Spot, error)
	GetSpot(ctx context.Context, id int64) (*Spot, error)
	GetSpots(ctx context.Context, locationID int64, filters SpotFilters) ([]Spot, error)
	SetSpotStatus(ctx context.Context, id int64, status Status) (*Spot, error)

	// InvalidateLocation drops cached spot listings after reservations move spot status.
	InvalidateLocation(ctx context.Context, locationID int64)
	SetStatusGuard(guard StatusGuard)
}

// StatusGuard writes an operator status change in step with the allocator, so
// an override never races a commit onto the same spot.
type StatusGuard interface {
	OverrideSpotStatus(ctx context.Context, spotID int64, status Status) error
}

type service struct {
	repo  Repository
	cache cache.Service
	guard StatusGuard
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("spots"),
	}
}

func (s *service) CreateLocation(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	location := &Location{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
	}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, constants.CACHE_KEY_LOCATIONS_LIST); err != nil {
		s.log.Warn("failed to invalidate location list", "error", err)
	}
	return location, nil
}

func (s *service) GetLocation(ctx context.Context, id int64) (*LocationResponse, error) {
	var cached LocationResponse
	err := s.cache.GetOrSet(ctx, constants.BuildLocationDetailKey(id), constants.TTL_LOCATION_DETAIL, func() (interface{}, error) {
		location, err := s.repo.GetLocationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		counts, err := s.repo.CountSpotsByZone(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count spots: %w", err)
		}
		return toLocationResponse(location, counts), nil
	}, &cached)
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *service) GetLocations(ctx context.Context) ([]Location, error) {
	var locations []Location
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_LOCATIONS_LIST, constants.TTL_LOCATIONS_LIST, func() (interface{}, error) {
		return s.repo.GetLocations(ctx)
	}, &locations)
	return locations, err
}

func (s *service) CreateSpots(ctx context.Context, locationID int64, req CreateSpotsRequest) ([]Spot, error) {
	zone, err := ParseZone(req.Zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.HourlyRate.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: hourly rate cannot be negative", ErrInvalidInput)
	}
	if _, err := s.repo.GetLocationByID(ctx, locationID); err != nil {
		return nil, err
	}

	start := req.StartAt
	if start == 0 {
		start = 1
	}
	batch := make([]Spot, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		batch = append(batch, Spot{
			LocationID: locationID,
			SpotNumber: FormatSpotNumber(req.Prefix, start+i),
			Zone:       zone,
			HourlyRate: req.HourlyRate,
			Status:     StatusAvailable,
		})
	}

	if err := s.repo.CreateSpots(ctx, batch); err != nil {
		return nil, err
	}

	s.InvalidateLocation(ctx, locationID)
	if err := s.cache.Delete(ctx, constants.BuildLocationDetailKey(locationID)); err != nil {
		s.log.Warn("failed to invalidate location detail", "location_id", locationID, "error", err)
	}
	return batch, nil
}

func (s *service) GetSpot(ctx context.Context, id int64) (*Spot, error) {
	var spot Spot
	err := s.cache.GetOrSet(ctx, constants.BuildSpotDetailKey(id), constants.TTL_SPOT_DETAIL, func() (interface{}, error) {
		return s.repo.GetSpotByID(ctx, id)
	}, &spot)
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (s *service) GetSpots(ctx context.Context, locationID int64, filters SpotFilters) ([]Spot, error) {
	if filters.Zone != "" {
		zone, err := ParseZone(filters.Zone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filters.Zone = string(zone)
	}
	if filters.Status != "" {
		status, err := ParseStatus(filters.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filters.Status = string(status)
	}
	if _, err := s.repo.GetLocationByID(ctx, locationID); err != nil {
		return nil, err
	}

	// status-filtered listings are never cached
	if filters.Status != "" {
		return s.repo.GetSpotsByLocation(ctx, locationID, filters)
	}

	var spots []Spot
	err := s.cache.GetOrSet(ctx, constants.BuildLocationSpotsKey(locationID, filters.Zone), constants.TTL_LOCATION_SPOTS, func() (interface{}, error) {
		return s.repo.GetSpotsByLocation(ctx, locationID, filters)
	}, &spots)
	return spots, err
}

// SetSpotStatus is the operator override, used mostly to take spots in and out of maintenance.
func (s *service) SetSpotStatus(ctx context.Context, id int64, status Status) (*Spot, error) {
	write := s.repo.UpdateSpotStatus
	if s.guard != nil {
		write = s.guard.OverrideSpotStatus
	}
	if err := write(ctx, id, status); err != nil {
		return nil, err
	}
	spot, err := s.repo.GetSpotByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.InvalidateLocation(ctx, spot.LocationID)
	if err := s.cache.Delete(ctx, constants.BuildSpotDetailKey(id)); err != nil {
		s.log.Warn("failed to invalidate spot detail", "spot_id", id, "error", err)
	}
	s.log.Info("spot status changed", "spot_id", id, "status", status)
	return spot, nil
}

func (s *service) SetStatusGuard(guard StatusGuard) {
	s.guard = guard
}

func (s *service) InvalidateLocation(ctx context.Context, locationID int64) {
	if err := s.cache.DeletePattern(ctx, constants.BuildLocationSpotsPattern(locationID)); err != nil {
		s.log.Warn("failed to invalidate spot listings", "location_id", locationID, "error", err)
	}
}

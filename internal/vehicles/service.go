package vehicles

import (
	"context"

	"parkly/internal/shared/constants"
	"parkly/pkg/cache"
	"parkly/pkg/logger"
)

type Service interface {
	Register(ctx context.Context, userID string, req RegisterVehicleRequest) (*Vehicle, error)
	ListMine(ctx context.Context, userID string) ([]Vehicle, error)
	Remove(ctx context.Context, userID string, id int64) error

	// OwnsVehicle lets the allocator check a vehicle belongs to the caller.
	OwnsVehicle(ctx context.Context, userID string, vehicleID int64) (bool, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("vehicles"),
	}
}

func (s *service) Register(ctx context.Context, userID string, req RegisterVehicleRequest) (*Vehicle, error) {
	vehicleType := Type(req.Type)
	if vehicleType == "" {
		vehicleType = TypeCar
	}

	vehicle := &Vehicle{
		UserID:       userID,
		LicensePlate: NormalizePlate(req.LicensePlate),
		Type:         vehicleType,
		Brand:        req.Brand,
		Model:        req.Model,
		Color:        req.Color,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.log.Info("vehicle registered", "user_id", userID, "vehicle_id", vehicle.ID)
	return vehicle, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]Vehicle, error) {
	var list []Vehicle
	err := s.cache.GetOrSet(ctx, constants.BuildUserVehiclesKey(userID), constants.TTL_USER_VEHICLES, func() (interface{}, error) {
		return s.repo.GetByUser(ctx, userID)
	}, &list)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Vehicle{}
	}
	return list, nil
}

func (s *service) Remove(ctx context.Context, userID string, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) OwnsVehicle(ctx context.Context, userID string, vehicleID int64) (bool, error) {
	list, err := s.ListMine(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, v := range list {
		if v.ID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, constants.BuildUserVehiclesKey(userID)); err != nil {
		s.log.Warn("failed to invalidate vehicle cache", "user_id", userID, "error", err)
	}
}

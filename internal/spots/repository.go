package spots

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrSpotNotFound     = errors.New("spot not found")
	ErrDuplicateSpot    = errors.New("spot number already exists at this location")
	ErrDuplicateName    = errors.New("location name already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSpotInUse        = errors.New("spot is held by a live reservation")
)

// Repository is the catalog store. Reservation-time reads go through the
// reservation ledger so they happen under its locks.
type Repository interface {
	CreateLocation(ctx context.Context, location *Location) error
	GetLocationByID(ctx context.Context, id int64) (*Location, error)
	GetLocations(ctx context.Context) ([]Location, error)

	CreateSpots(ctx context.Context, spots []Spot) error
	GetSpotByID(ctx context.Context, id int64) (*Spot, error)
	GetSpotsByLocation(ctx context.Context, locationID int64, filters SpotFilters) ([]Spot, error)
	UpdateSpotStatus(ctx context.Context, id int64, status Status) error
	CountSpotsByZone(ctx context.Context, locationID int64) (map[Zone]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateLocation(ctx context.Context, location *Location) error {
	err := r.db.WithContext(ctx).Create(location).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

func (r *repository) GetLocationByID(ctx context.Context, id int64) (*Location, error) {
	var location Location
	err := r.db.WithContext(ctx).First(&location, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) GetLocations(ctx context.Context) ([]Location, error) {
	var locations []Location
	err := r.db.WithContext(ctx).Order("name ASC").Find(&locations).Error
	return locations, err
}

// CreateSpots inserts the batch in one transaction; a clashing number rolls back all of it.
func (r *repository) CreateSpots(ctx context.Context, spots []Spot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(spots, 100).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSpot
	}
	return err
}

func (r *repository) GetSpotByID(ctx context.Context, id int64) (*Spot, error) {
	var spot Spot
	err := r.db.WithContext(ctx).First(&spot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSpotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) GetSpotsByLocation(ctx context.Context, locationID int64, filters SpotFilters) ([]Spot, error) {
	query := r.db.WithContext(ctx).Where("location_id = ?", locationID)
	if filters.Zone != "" {
		query = query.Where("zone = ?", filters.Zone)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var spots []Spot
	err := query.Order("zone ASC, spot_number ASC").Find(&spots).Error
	return spots, err
}

func (r *repository) UpdateSpotStatus(ctx context.Context, id int64, status Status) error {
	result := r.db.WithContext(ctx).Model(&Spot{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSpotNotFound
	}
	return nil
}

func (r *repository) CountSpotsByZone(ctx context.Context, locationID int64) (map[Zone]int64, error) {
	var rows []struct {
		Zone  Zone
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&Spot{}).
		Select("zone, COUNT(*) AS total").
		Where("location_id = ?", locationID).
		Group("zone").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[Zone]int64, len(rows))
	for _, row := range rows {
		counts[row.Zone] = row.Total
	}
	return counts, nil
}

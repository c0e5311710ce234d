package vehicles

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDuplicatePlate  = errors.New("license plate already registered")
)

type Repository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
	GetByUser(ctx context.Context, userID string) ([]Vehicle, error)
	Delete(ctx context.Context, userID string, id int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, vehicle *Vehicle) error {
	err := r.db.WithContext(ctx).Create(vehicle).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePlate
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	var vehicle Vehicle
	err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) GetByUser(ctx context.Context, userID string) ([]Vehicle, error) {
	var list []Vehicle
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// Delete only removes the row when it belongs to userID.
func (r *repository) Delete(ctx context.Context, userID string, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

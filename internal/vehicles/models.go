package vehicles

import (
	"strings"
	"time"
)

type Type string

const (
	TypeCar        Type = "car"
	TypeMotorcycle Type = "motorcycle"
	TypeVan        Type = "van"
	TypeElectric   Type = "electric"
)

// Vehicle is registered to exactly one user. Plates are stored normalised so
// "b 1234 xyz" and "B1234XYZ" are the same car.
type Vehicle struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	LicensePlate string    `json:"licensePlate" gorm:"type:varchar(20);not null;uniqueIndex"`
	Type         Type      `json:"type" gorm:"type:varchar(20);not null;default:'car'"`
	Brand        string    `json:"brand" gorm:"type:varchar(50)"`
	Model        string    `json:"model" gorm:"type:varchar(50)"`
	Color        string    `json:"color" gorm:"type:varchar(30)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}

package spots

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Zone classifies a spot. The set is closed.
type Zone string

const (
	ZoneVIP           Zone = "VIP"
	ZoneEntertainment Zone = "Entertainment"
	ZoneShopping      Zone = "Shopping"
	ZoneDining        Zone = "Dining"
	ZoneElectric      Zone = "Electric"
	ZoneRegular       Zone = "Regular"
)

var AllZones = []Zone{ZoneVIP, ZoneEntertainment, ZoneShopping, ZoneDining, ZoneElectric, ZoneRegular}

// ParseZone accepts any casing of a known zone name.
func ParseZone(s string) (Zone, error) {
	for _, z := range AllZones {
		if strings.EqualFold(s, string(z)) {
			return z, nil
		}
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

func (z Zone) Valid() bool {
	for _, known := range AllZones {
		if z == known {
			return true
		}
	}
	return false
}

// Status is advisory display state; the reservation ledger is the source of truth.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusOccupied:
		return StatusOccupied, nil
	case StatusReserved:
		return StatusReserved, nil
	case StatusMaintenance:
		return StatusMaintenance, nil
	}
	return "", fmt.Errorf("unknown spot status %q", s)
}

type Location struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Address   string    `json:"address" gorm:"type:varchar(500)"`
	City      string    `json:"city" gorm:"type:varchar(100)"`
	Spots     []Spot    `json:"spots,omitempty" gorm:"foreignKey:LocationID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Spot struct {
	ID         int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	LocationID int64           `json:"locationId" gorm:"not null;uniqueIndex:idx_location_spot_number;index:idx_location_zone"`
	SpotNumber string          `json:"spotNumber" gorm:"type:varchar(20);not null;uniqueIndex:idx_location_spot_number"`
	Zone       Zone            `json:"zone" gorm:"type:varchar(20);not null;index:idx_location_zone"`
	HourlyRate decimal.Decimal `json:"hourlyRate" gorm:"type:decimal(12,2);not null"`
	Status     Status          `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Reservable reports whether the allocator may hand this spot out. Only
// maintenance blocks; reserved/occupied are advisory and the ledger decides.
func (s *Spot) Reservable() bool {
	return s.Status != StatusMaintenance
}

// FormatSpotNumber zero-pads so lexical order equals numeric order ("A-04" < "A-10").
func FormatSpotNumber(prefix string, n int) string {
	if prefix == "" {
		return fmt.Sprintf("%03d", n)
	}
	return fmt.Sprintf("%s-%02d", prefix, n)
}

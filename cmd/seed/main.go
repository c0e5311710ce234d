package main

import (
	"context"
	"fmt"
	"log"

	"parkly/internal/reservations"
	"parkly/internal/shared/config"
	"parkly/internal/shared/database"
	"parkly/internal/spots"
	"parkly/internal/users"
	"parkly/internal/vehicles"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Parkly Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase empties every table, children first. Plain deletes keep it portable across drivers.
func (s *Seeder) CleanDatabase() error {
	models := []interface{}{
		&reservations.Transition{},
		&reservations.Reservation{},
		&spots.Spot{},
		&spots.Location{},
		&vehicles.Vehicle{},
		&users.User{},
	}

	return s.db.SQL.Transaction(func(tx *gorm.DB) error {
		for _, model := range models {
			stmt := &gorm.Statement{DB: tx}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("failed to parse model: %w", err)
			}
			fmt.Printf("  Emptying table: %s\n", stmt.Schema.Table)
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to empty table %s: %w", stmt.Schema.Table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedVehicles(userIDs); err != nil {
		return fmt.Errorf("failed to seed vehicles: %w", err)
	}

	if err := s.SeedLocations(); err != nil {
		return fmt.Errorf("failed to seed locations: %w", err)
	}

	// cached catalog and vehicle lists would be stale after a reseed
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 1 admin and 2 regular users, all with password "qwerty"
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@parkly.dev", users.RoleAdmin},
		{"driver1", "Asha", "Rao", "asha@parkly.dev", users.RoleUser},
		{"driver2", "Tom", "Becker", "tom@parkly.dev", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.SQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedVehicles registers a vehicle for each regular user
func (s *Seeder) SeedVehicles(userIDs map[string]uuid.UUID) error {
	fmt.Println("  🚗 Seeding vehicles...")

	vehiclesData := []struct {
		owner string
		plate string
		typ   vehicles.Type
		brand string
		model string
	}{
		{"driver1", "MH 12 AB 1234", vehicles.TypeCar, "Honda", "City"},
		{"driver1", "MH 12 EV 0042", vehicles.TypeElectric, "Tata", "Nexon EV"},
		{"driver2", "B TB 4711", vehicles.TypeMotorcycle, "BMW", "R 1250"},
	}

	for _, v := range vehiclesData {
		vehicle := vehicles.Vehicle{
			UserID:       userIDs[v.owner].String(),
			LicensePlate: vehicles.NormalizePlate(v.plate),
			Type:         v.typ,
			Brand:        v.brand,
			Model:        v.model,
		}
		if err := s.db.SQL.Create(&vehicle).Error; err != nil {
			return fmt.Errorf("failed to create vehicle %s: %w", v.plate, err)
		}
		fmt.Printf("    ✅ Created vehicle %d: %s (%s)\n", vehicle.ID, vehicle.LicensePlate, v.owner)
	}

	return nil
}

// SeedLocations creates two locations with spots in every zone
func (s *Seeder) SeedLocations() error {
	fmt.Println("  🅿️  Seeding locations and spots...")

	type zoneLayout struct {
		zone   spots.Zone
		prefix string
		count  int
		rate   string
	}

	locationsData := []struct {
		name    string
		address string
		city    string
		layout  []zoneLayout
	}{
		{
			name:    "Phoenix Mall Parking",
			address: "462 Senapati Bapat Marg",
			city:    "Mumbai",
			layout: []zoneLayout{
				{spots.ZoneVIP, "V", 4, "250.00"},
				{spots.ZoneEntertainment, "E", 8, "120.00"},
				{spots.ZoneShopping, "S", 12, "80.00"},
				{spots.ZoneDining, "D", 6, "90.00"},
				{spots.ZoneElectric, "C", 4, "150.00"},
				{spots.ZoneRegular, "R", 20, "60.00"},
			},
		},
		{
			name:    "Central Station Garage",
			address: "Europaplatz 1",
			city:    "Berlin",
			layout: []zoneLayout{
				{spots.ZoneVIP, "V", 2, "12.00"},
				{spots.ZoneElectric, "C", 6, "5.50"},
				{spots.ZoneRegular, "R", 30, "3.00"},
			},
		},
	}

	for _, l := range locationsData {
		location := spots.Location{Name: l.name, Address: l.address, City: l.city}
		if err := s.db.SQL.Create(&location).Error; err != nil {
			return fmt.Errorf("failed to create location %s: %w", l.name, err)
		}

		var batch []spots.Spot
		for _, z := range l.layout {
			rate := decimal.RequireFromString(z.rate)
			for n := 1; n <= z.count; n++ {
				batch = append(batch, spots.Spot{
					LocationID: location.ID,
					SpotNumber: spots.FormatSpotNumber(z.prefix, n),
					Zone:       z.zone,
					HourlyRate: rate,
					Status:     spots.StatusAvailable,
				})
			}
		}
		// one spot under maintenance so the allocator's skip path is visible
		batch[len(batch)-1].Status = spots.StatusMaintenance

		if err := s.db.SQL.CreateInBatches(batch, 50).Error; err != nil {
			return fmt.Errorf("failed to create spots for %s: %w", l.name, err)
		}
		fmt.Printf("    ✅ Created location: %s (%d spots)\n", location.Name, len(batch))
	}

	return nil
}

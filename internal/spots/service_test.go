package spots

import (
	"context"
	"fmt"
	"testing"

	"parkly/pkg/cache"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Location{}, &Spot{}))
	return NewService(NewRepository(db), cache.NewService(nil))
}

func TestFormatSpotNumber(t *testing.T) {
	assert.Equal(t, "A-04", FormatSpotNumber("A", 4))
	assert.Equal(t, "A-10", FormatSpotNumber("A", 10))
	assert.Equal(t, "007", FormatSpotNumber("", 7))
	assert.Less(t, FormatSpotNumber("A", 4), FormatSpotNumber("A", 10))
}

func TestParseZone(t *testing.T) {
	zone, err := ParseZone("electric")
	require.NoError(t, err)
	assert.Equal(t, ZoneElectric, zone)

	_, err = ParseZone("Rooftop")
	assert.Error(t, err)
	assert.False(t, Zone("Rooftop").Valid())
}

func TestService_CreateSpotsAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	location, err := svc.CreateLocation(ctx, CreateLocationRequest{Name: "Harbour Garage", City: "Hamburg"})
	require.NoError(t, err)

	created, err := svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{
		Zone:       "vip",
		Prefix:     "V",
		Count:      3,
		HourlyRate: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "V-01", created[0].SpotNumber)
	assert.Equal(t, ZoneVIP, created[0].Zone)

	_, err = svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{
		Zone:       "Regular",
		Prefix:     "R",
		Count:      2,
		StartAt:    9,
		HourlyRate: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	regular, err := svc.GetSpots(ctx, location.ID, SpotFilters{Zone: "regular"})
	require.NoError(t, err)
	require.Len(t, regular, 2)
	assert.Equal(t, "R-09", regular[0].SpotNumber)
	assert.Equal(t, "R-10", regular[1].SpotNumber)

	detail, err := svc.GetLocation(ctx, location.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, detail.TotalSpots)
	assert.EqualValues(t, 3, detail.Zones[ZoneVIP])
}

func TestService_CreateSpotsRejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	location, err := svc.CreateLocation(ctx, CreateLocationRequest{Name: "Old Town"})
	require.NoError(t, err)

	_, err = svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Rooftop", Count: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Regular", Count: 1, HourlyRate: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSpots(ctx, location.ID+100, CreateSpotsRequest{Zone: "Regular", Count: 1})
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Regular", Prefix: "R", Count: 2})
	require.NoError(t, err)
	_, err = svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Regular", Prefix: "R", Count: 3})
	assert.ErrorIs(t, err, ErrDuplicateSpot)

	spots, err := svc.GetSpots(ctx, location.ID, SpotFilters{})
	require.NoError(t, err)
	assert.Len(t, spots, 2, "a clashing batch is rolled back whole")

	_, err = svc.CreateLocation(ctx, CreateLocationRequest{Name: "Old Town"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestService_SetSpotStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	location, err := svc.CreateLocation(ctx, CreateLocationRequest{Name: "Depot"})
	require.NoError(t, err)
	created, err := svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Electric", Prefix: "C", Count: 2})
	require.NoError(t, err)

	spot, err := svc.SetSpotStatus(ctx, created[0].ID, StatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, spot.Status)
	assert.False(t, spot.Reservable())

	blocked, err := svc.GetSpots(ctx, location.ID, SpotFilters{Status: "MAINTENANCE"})
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "C-01", blocked[0].SpotNumber)

	_, err = svc.SetSpotStatus(ctx, 9999, StatusAvailable)
	assert.ErrorIs(t, err, ErrSpotNotFound)

	_, err = svc.GetSpots(ctx, location.ID, SpotFilters{Status: "towed"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type stubGuard struct {
	calls []Status
	err   error
}

func (g *stubGuard) OverrideSpotStatus(_ context.Context, _ int64, status Status) error {
	g.calls = append(g.calls, status)
	return g.err
}

func TestService_SetSpotStatusGoesThroughGuard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	location, err := svc.CreateLocation(ctx, CreateLocationRequest{Name: "Harbour"})
	require.NoError(t, err)
	created, err := svc.CreateSpots(ctx, location.ID, CreateSpotsRequest{Zone: "Regular", Prefix: "R", Count: 1})
	require.NoError(t, err)

	guard := &stubGuard{err: ErrSpotInUse}
	svc.SetStatusGuard(guard)

	_, err = svc.SetSpotStatus(ctx, created[0].ID, StatusAvailable)
	assert.ErrorIs(t, err, ErrSpotInUse)
	assert.Equal(t, []Status{StatusAvailable}, guard.calls)
}

package reservations

import (
	"context"
	"testing"

	"parkly/internal/spots"
	"parkly/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancel(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	ctx := context.Background()
	f.clock.Set(at(10, 30))

	created, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: f.spotID("R-01")}, window(10, 12)))
	require.NoError(t, err)
	id := created.Reservation.ID

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := f.allocator.Cancel(ctx, id, Principal{UserID: "u2", Role: "USER"})
		requireKind(t, err, ErrForbidden, ReasonNone)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.allocator.Cancel(ctx, uuid.New(), Principal{UserID: "u1"})
		requireKind(t, err, ErrNotFound, ReasonNone)
	})

	t.Run("owner cancels", func(t *testing.T) {
		res, err := f.allocator.Cancel(ctx, id, Principal{UserID: "u1", Role: "USER"})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, res.Status)
		require.NotNil(t, res.CancelledAt)
		assert.Equal(t, spots.StatusAvailable, f.spotStatus(t, "R-01"))
	})

	t.Run("second cancel is AlreadyTerminal", func(t *testing.T) {
		_, err := f.allocator.Cancel(ctx, id, Principal{UserID: "u1", Role: "USER"})
		requireKind(t, err, ErrAlreadyTerminal, ReasonNone)

		history, err := f.ledger.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, StatusPending, history[0].ToStatus)
		assert.Equal(t, StatusPending, history[1].FromStatus)
		assert.Equal(t, StatusCancelled, history[1].ToStatus)
	})
}

func TestCancel_AdminMayCancelAnyReservation(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	ctx := context.Background()

	created, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: f.spotID("R-01")}, window(10, 12)))
	require.NoError(t, err)

	res, err := f.allocator.Cancel(ctx, created.Reservation.ID, Principal{UserID: "admin-1", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)

	history, err := f.ledger.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "admin-1", history[1].Actor)
	assert.Equal(t, "cancelled by admin", history[1].Note)
}

func TestCancel_KeepsSpotReservedWhileAnotherReservationIsLive(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	ctx := context.Background()
	target := BySpot{SpotID: f.spotID("R-01")}
	f.clock.Set(at(10, 30))

	current, err := f.allocator.Allocate(ctx, f.request("u1", target, window(10, 11)))
	require.NoError(t, err)
	later, err := f.allocator.Allocate(ctx, f.request("u2", target, window(15, 16)))
	require.NoError(t, err)

	_, err = f.allocator.Cancel(ctx, later.Reservation.ID, Principal{UserID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, spots.StatusReserved, f.spotStatus(t, "R-01"))

	_, err = f.allocator.Cancel(ctx, current.Reservation.ID, Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, spots.StatusAvailable, f.spotStatus(t, "R-01"))
}

func TestActivate(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	events := &recordingPublisher{}
	f.allocator.events = events
	ctx := context.Background()

	created, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: f.spotID("R-01")}, window(10, 12)))
	require.NoError(t, err)
	id := created.Reservation.ID

	res, err := f.allocator.Activate(ctx, id, ActorPayment)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)
	require.NotNil(t, res.ActivatedAt)

	// redelivered confirmation
	res, err = f.allocator.Activate(ctx, id, ActorPayment)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)
	assert.Equal(t, []EventType{EventCreated, EventActivated}, events.types())

	_, err = f.allocator.Cancel(ctx, id, Principal{UserID: "u1"})
	require.NoError(t, err)

	_, err = f.allocator.Activate(ctx, id, ActorPayment)
	requireKind(t, err, ErrAlreadyTerminal, ReasonNone)

	_, err = f.allocator.Activate(ctx, uuid.New(), ActorPayment)
	requireKind(t, err, ErrNotFound, ReasonNone)
}

func TestSweep(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{
		"R-01": spots.ZoneRegular,
		"R-02": spots.ZoneRegular,
		"R-03": spots.ZoneRegular,
	})
	events := &recordingPublisher{}
	f.allocator.events = events
	ctx := context.Background()

	paid, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: f.spotID("R-01")}, window(9, 10)))
	require.NoError(t, err)
	_, err = f.allocator.Activate(ctx, paid.Reservation.ID, ActorPayment)
	require.NoError(t, err)

	unpaid, err := f.allocator.Allocate(ctx, f.request("u2", BySpot{SpotID: f.spotID("R-02")}, window(9, 11)))
	require.NoError(t, err)

	future, err := f.allocator.Allocate(ctx, f.request("u3", BySpot{SpotID: f.spotID("R-03")}, window(13, 14)))
	require.NoError(t, err)

	f.clock.Set(at(11, 0))
	report, err := f.allocator.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Completed: 1, Expired: 1}, report)

	got, err := f.ledger.Get(ctx, paid.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	got, err = f.ledger.Get(ctx, unpaid.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	got, err = f.ledger.Get(ctx, future.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	assert.Equal(t, spots.StatusAvailable, f.spotStatus(t, "R-01"))
	assert.Equal(t, spots.StatusAvailable, f.spotStatus(t, "R-02"))
	assert.Equal(t, spots.StatusReserved, f.spotStatus(t, "R-03"))

	// nothing left to do
	report, err = f.allocator.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, report)

	assert.Contains(t, events.types(), EventCompleted)
	assert.Contains(t, events.types(), EventExpired)
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestTransition_RefusesBackwardMove(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	ctx := context.Background()

	created, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: f.spotID("R-01")}, window(10, 12)))
	require.NoError(t, err)

	_, err = f.allocator.transition(ctx, created.Reservation, "u1", "skip payment", func(*Reservation) (Status, bool, error) {
		return StatusCompleted, true, nil
	})
	requireKind(t, err, ErrConflict, ReasonNone)

	var transitions int64
	require.NoError(t, f.db.Model(&Transition{}).Count(&transitions).Error)
	assert.EqualValues(t, 1, transitions)
	assert.Equal(t, spots.StatusReserved, f.spotStatus(t, "R-01"))
}

func TestOverrideSpotStatus(t *testing.T) {
	f := newFixture(t, 1000, map[string]spots.Zone{"R-01": spots.ZoneRegular})
	ctx := context.Background()
	catalog := spots.NewService(spots.NewRepository(f.db), cache.NewService(nil))
	catalog.SetStatusGuard(f.allocator)
	spotID := f.spotID("R-01")

	_, err := f.allocator.Allocate(ctx, f.request("u1", BySpot{SpotID: spotID}, window(10, 12)))
	require.NoError(t, err)
	require.Equal(t, spots.StatusReserved, f.spotStatus(t, "R-01"))

	f.clock.Set(at(11, 0))
	_, err = catalog.SetSpotStatus(ctx, spotID, spots.StatusAvailable)
	assert.ErrorIs(t, err, spots.ErrSpotInUse)
	assert.Equal(t, spots.StatusReserved, f.spotStatus(t, "R-01"))

	spot, err := catalog.SetSpotStatus(ctx, spotID, spots.StatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, spots.StatusMaintenance, spot.Status)

	// once the reservation is over the spot may be handed back
	f.clock.Set(at(12, 0))
	spot, err = catalog.SetSpotStatus(ctx, spotID, spots.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, spots.StatusAvailable, spot.Status)

	_, err = catalog.SetSpotStatus(ctx, 9999, spots.StatusMaintenance)
	assert.ErrorIs(t, err, spots.ErrSpotNotFound)
}

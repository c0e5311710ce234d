package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkly/internal/spots"
	"parkly/internal/timerange"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errSpotMissing        = errors.New("spot not found")
	errReservationMissing = errors.New("reservation not found")
)

// Ledger is the authoritative store of reservations. Atomic runs fn in one
// transaction in which spot and reservation reads take row locks; View runs
// fn against the store without locks.
type Ledger interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error

	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, filter ListFilter) ([]Reservation, int64, error)
	History(ctx context.Context, id uuid.UUID) ([]Transition, error)
}

// Tx is the set of ledger operations available inside Atomic or View.
type Tx interface {
	// Spot loads one spot, locking its row under Atomic.
	Spot(id int64) (*spots.Spot, error)
	// ZoneSpots loads every spot of a zone at a location ordered by spot number, locking the rows under Atomic.
	ZoneSpots(locationID int64, zone spots.Zone) ([]spots.Spot, error)
	// Busy returns the subset of spotIDs holding a live reservation that overlaps r.
	Busy(spotIDs []int64, r timerange.Range) (map[int64]bool, error)
	// LiveAt reports whether the spot has a live reservation covering t, ignoring exclude.
	LiveAt(spotID int64, t time.Time, exclude uuid.UUID) (bool, error)
	ByIdempotencyKey(userID, key string) (*Reservation, error)

	Insert(res *Reservation, actor string) error
	// Reservation loads one reservation, locking its row under Atomic.
	Reservation(id uuid.UUID) (*Reservation, error)
	Transition(res *Reservation, to Status, actor, note string, at time.Time) error
	SetSpotStatus(spotID int64, status spots.Status) error

	// Due lists live reservations whose range ended at or before now.
	Due(now time.Time, limit int) ([]Reservation, error)
}

type ListFilter struct {
	UserID     string
	LocationID int64
	SpotID     int64
	Status     Status
	Page       int
	Limit      int
}

type gormLedger struct {
	db       *gorm.DB
	rowLocks bool
}

// NewLedger builds the GORM ledger. SQLite has no row locks; there the
// allocator's in-process bucket lock and the single pooled connection serialize writers.
func NewLedger(db *gorm.DB) Ledger {
	return &gormLedger{
		db:       db,
		rowLocks: db.Dialector.Name() != "sqlite",
	}
}

func (l *gormLedger) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, lock: l.rowLocks})
	})
}

func (l *gormLedger) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&gormTx{db: l.db.WithContext(ctx)})
}

func (l *gormLedger) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var res Reservation
	err := l.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errReservationMissing
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (l *gormLedger) List(ctx context.Context, filter ListFilter) ([]Reservation, int64, error) {
	query := l.db.WithContext(ctx).Model(&Reservation{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.LocationID > 0 {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.SpotID > 0 {
		query = query.Where("spot_id = ?", filter.SpotID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	var list []Reservation
	err := query.Order("start_time DESC").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

func (l *gormLedger) History(ctx context.Context, id uuid.UUID) ([]Transition, error) {
	var list []Transition
	err := l.db.WithContext(ctx).Where("reservation_id = ?", id).Order("id ASC").Find(&list).Error
	return list, err
}

type gormTx struct {
	db   *gorm.DB
	lock bool
}

func (t *gormTx) locked() *gorm.DB {
	if t.lock {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

func (t *gormTx) Spot(id int64) (*spots.Spot, error) {
	var spot spots.Spot
	err := t.locked().Where("id = ?", id).Take(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errSpotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load spot %d: %w", id, err)
	}
	return &spot, nil
}

func (t *gormTx) ZoneSpots(locationID int64, zone spots.Zone) ([]spots.Spot, error) {
	var list []spots.Spot
	err := t.locked().
		Where("location_id = ? AND zone = ?", locationID, string(zone)).
		Order("spot_number ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("load %s spots at location %d: %w", zone, locationID, err)
	}
	return list, nil
}

// Busy applies the single overlap rule s1 < e2 AND s2 < e1 in SQL.
func (t *gormTx) Busy(spotIDs []int64, r timerange.Range) (map[int64]bool, error) {
	busy := make(map[int64]bool)
	if len(spotIDs) == 0 {
		return busy, nil
	}

	var ids []int64
	err := t.db.Model(&Reservation{}).
		Where("spot_id IN ? AND status IN ? AND start_time < ? AND end_time > ?", spotIDs, liveStatuses, r.End, r.Start).
		Pluck("spot_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("overlap check: %w", err)
	}
	for _, id := range ids {
		busy[id] = true
	}
	return busy, nil
}

func (t *gormTx) LiveAt(spotID int64, at time.Time, exclude uuid.UUID) (bool, error) {
	var n int64
	err := t.db.Model(&Reservation{}).
		Where("spot_id = ? AND status IN ? AND start_time <= ? AND end_time > ? AND id <> ?", spotID, liveStatuses, at, at, exclude).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("live check: %w", err)
	}
	return n > 0, nil
}

func (t *gormTx) ByIdempotencyKey(userID, key string) (*Reservation, error) {
	var res Reservation
	err := t.db.Where("user_id = ? AND idempotency_key = ?", userID, key).Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	return &res, nil
}

func (t *gormTx) Insert(res *Reservation, actor string) error {
	if err := t.db.Create(res).Error; err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return t.db.Create(&Transition{
		ReservationID: res.ID,
		ToStatus:      res.Status,
		Actor:         actor,
		CreatedAt:     res.CreatedAt,
	}).Error
}

func (t *gormTx) Reservation(id uuid.UUID) (*Reservation, error) {
	var res Reservation
	err := t.locked().Where("id = ?", id).Take(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errReservationMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return &res, nil
}

func (t *gormTx) Transition(res *Reservation, to Status, actor, note string, at time.Time) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": at,
	}
	switch to {
	case StatusActive:
		updates["activated_at"] = at
	case StatusCancelled:
		updates["cancelled_at"] = at
	case StatusCompleted:
		updates["completed_at"] = at
	}

	// the status guard makes a lost update visible instead of silent
	result := t.db.Model(&Reservation{}).
		Where("id = ? AND status = ?", res.ID, string(res.Status)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update reservation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return newError(ErrConflict, ReasonNone, "reservation changed concurrently")
	}

	from := res.Status
	res.Status = to
	res.UpdatedAt = at
	switch to {
	case StatusActive:
		res.ActivatedAt = &at
	case StatusCancelled:
		res.CancelledAt = &at
	case StatusCompleted:
		res.CompletedAt = &at
	}

	return t.db.Create(&Transition{
		ReservationID: res.ID,
		FromStatus:    from,
		ToStatus:      to,
		Actor:         actor,
		Note:          note,
		CreatedAt:     at,
	}).Error
}

func (t *gormTx) SetSpotStatus(spotID int64, status spots.Status) error {
	err := t.db.Model(&spots.Spot{}).Where("id = ?", spotID).Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("update spot status: %w", err)
	}
	return nil
}

func (t *gormTx) Due(now time.Time, limit int) ([]Reservation, error) {
	var list []Reservation
	err := t.db.
		Where("status IN ? AND end_time <= ?", liveStatuses, now).
		Order("end_time ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("load due reservations: %w", err)
	}
	return list, nil
}

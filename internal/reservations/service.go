package reservations

import (
	"context"
	"time"

	"parkly/internal/spots"
	"parkly/internal/timerange"
	"parkly/pkg/logger"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

type Service interface {
	Create(ctx context.Context, principal Principal, req CreateReservationRequest, idempotencyKey string) (*Result, error)
	Get(ctx context.Context, id string, principal Principal) (*ReservationDetailResponse, error)
	ListMine(ctx context.Context, principal Principal, page, limit int) (*ReservationListResponse, error)
	ListAll(ctx context.Context, filters AdminListFilters) (*ReservationListResponse, error)
	Cancel(ctx context.Context, id string, principal Principal) (*Reservation, error)
	Activate(ctx context.Context, id string, actor string) (*Reservation, error)

	Availability(ctx context.Context, locationID int64, query AvailabilityQuery) (*AvailabilityResponse, error)
	Quote(ctx context.Context, locationID int64, query QuoteQuery) (*QuoteResponse, error)

	Sweep(ctx context.Context) (SweepReport, error)
}

type service struct {
	allocator    *Allocator
	ledger       Ledger
	retryBackoff time.Duration
	log          *logger.Logger
}

// NewService wraps the allocator for the HTTP and messaging layers. A zero
// retryBackoff disables the caller-side retry.
func NewService(allocator *Allocator, ledger Ledger, retryBackoff time.Duration) Service {
	return &service{
		allocator:    allocator,
		ledger:       ledger,
		retryBackoff: retryBackoff,
		log:          logger.GetDefault().WithComponent("reservations"),
	}
}

// Create allocates a spot. When the client sent an idempotency key a storage
// failure is retried once; the key turns a duplicate commit into a replay.
func (s *service) Create(ctx context.Context, principal Principal, req CreateReservationRequest, idempotencyKey string) (*Result, error) {
	allocReq, err := req.toRequest(principal, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if idempotencyKey == "" || s.retryBackoff <= 0 {
		return s.allocator.Allocate(ctx, allocReq)
	}

	var result *Result
	backoff := retry.WithMaxRetries(1, retry.NewExponential(s.retryBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.allocator.Allocate(ctx, allocReq)
		if err != nil {
			if e, ok := AsError(err); ok && e.Transient() {
				s.log.Warn("retrying allocation", "user_id", principal.UserID, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id string, principal Principal) (*ReservationDetailResponse, error) {
	resID, err := parseReservationID(id)
	if err != nil {
		return nil, err
	}

	res, err := s.allocator.lookup(ctx, resID)
	if err != nil {
		return nil, err
	}
	// foreign reservations look the same as missing ones
	if !principal.IsAdmin() && res.UserID != principal.UserID {
		return nil, newError(ErrNotFound, ReasonNone, "reservation not found")
	}

	history, err := s.ledger.History(ctx, res.ID)
	if err != nil {
		return nil, classify(err)
	}
	return &ReservationDetailResponse{Reservation: *res, History: history}, nil
}

func (s *service) ListMine(ctx context.Context, principal Principal, page, limit int) (*ReservationListResponse, error) {
	return s.list(ctx, ListFilter{UserID: principal.UserID, Page: page, Limit: limit})
}

func (s *service) ListAll(ctx context.Context, filters AdminListFilters) (*ReservationListResponse, error) {
	filter := ListFilter{
		UserID:     filters.UserID,
		LocationID: filters.LocationID,
		SpotID:     filters.SpotID,
		Status:     Status(filters.Status),
		Page:       filters.Page,
		Limit:      filters.Limit,
	}
	return s.list(ctx, filter)
}

func (s *service) list(ctx context.Context, filter ListFilter) (*ReservationListResponse, error) {
	list, total, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, classify(err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	if list == nil {
		list = []Reservation{}
	}
	return &ReservationListResponse{
		Reservations: list,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}, nil
}

func (s *service) Cancel(ctx context.Context, id string, principal Principal) (*Reservation, error) {
	resID, err := parseReservationID(id)
	if err != nil {
		return nil, err
	}
	return s.allocator.Cancel(ctx, resID, principal)
}

func (s *service) Activate(ctx context.Context, id string, actor string) (*Reservation, error) {
	resID, err := parseReservationID(id)
	if err != nil {
		return nil, err
	}
	return s.allocator.Activate(ctx, resID, actor)
}

// Availability is a lock-free snapshot; a spot listed here can still be taken
// before the client books it.
func (s *service) Availability(ctx context.Context, locationID int64, query AvailabilityQuery) (*AvailabilityResponse, error) {
	r, zone, err := query.parse()
	if err != nil {
		return nil, err
	}

	var free []spots.Spot
	err = s.ledger.View(ctx, func(tx Tx) error {
		var err error
		free, err = s.allocator.index.FreeSpots(tx, locationID, zone, r)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	out := &AvailabilityResponse{
		LocationID: locationID,
		Zone:       zone,
		StartTime:  r.Start,
		EndTime:    r.End,
		Spots:      make([]AvailableSpot, 0, len(free)),
	}
	for _, spot := range free {
		cost, err := s.allocator.pricing.Price(spot.HourlyRate, r)
		if err != nil {
			return nil, invalid("%v", err)
		}
		out.Spots = append(out.Spots, AvailableSpot{
			SpotID:     spot.ID,
			SpotNumber: spot.SpotNumber,
			Zone:       spot.Zone,
			HourlyRate: spot.HourlyRate,
			TotalCost:  cost,
		})
	}
	return out, nil
}

// Quote resolves the target exactly as Create would and prices it, without writing.
func (s *service) Quote(ctx context.Context, locationID int64, query QuoteQuery) (*QuoteResponse, error) {
	target, r, err := query.parse()
	if err != nil {
		return nil, err
	}

	var spot *spots.Spot
	err = s.ledger.View(ctx, func(tx Tx) error {
		var err error
		spot, err = s.allocator.index.FindAvailable(tx, locationID, target, r)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	cost, err := s.allocator.pricing.Price(spot.HourlyRate, r)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return &QuoteResponse{
		SpotID:     spot.ID,
		SpotNumber: spot.SpotNumber,
		Zone:       spot.Zone,
		HourlyRate: spot.HourlyRate,
		StartTime:  r.Start,
		EndTime:    r.End,
		TotalCost:  cost,
	}, nil
}

func (s *service) Sweep(ctx context.Context) (SweepReport, error) {
	return s.allocator.Sweep(ctx)
}

func parseReservationID(id string) (uuid.UUID, error) {
	resID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalid("reservation id must be a UUID")
	}
	return resID, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseRange(start, end string) (timerange.Range, error) {
	r, err := timerange.Parse(start, end)
	if err != nil {
		return timerange.Range{}, invalid("%v", err)
	}
	return r, nil
}

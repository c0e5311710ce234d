package payments

import (
	"context"
	"errors"
	"time"

	"parkly/internal/reservations"
	"parkly/pkg/logger"

	"github.com/sethvargo/go-retry"
)

// Activator is the slice of the reservation service payments need.
type Activator interface {
	Activate(ctx context.Context, id string, actor string) (*reservations.Reservation, error)
}

// Handler turns one payment message into a reservation activation.
type Handler struct {
	activator  Activator
	maxRetries uint64
	backoff    time.Duration
	log        *logger.Logger
}

func NewHandler(activator Activator, maxRetries uint64, backoff time.Duration) *Handler {
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Handler{
		activator:  activator,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        logger.GetDefault().WithComponent("payments"),
	}
}

// Handle returns nil when the message is done with, including when it needed
// no action. Only storage failures are retried.
func (h *Handler) Handle(ctx context.Context, value []byte) error {
	msg, err := ParsePaymentMessage(value)
	if err != nil {
		return err
	}
	if msg.Status != PaymentConfirmed {
		h.log.Info("ignoring payment", "payment_id", msg.PaymentID, "reservation_id", msg.ReservationID, "status", msg.Status)
		return nil
	}

	b := retry.WithMaxRetries(h.maxRetries, retry.NewExponential(h.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		_, err := h.activator.Activate(ctx, msg.ReservationID, reservations.ActorPayment)
		if e, ok := reservations.AsError(err); ok && e.Kind == reservations.ErrAllocationFailed {
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
		h.log.Info("reservation paid", "payment_id", msg.PaymentID, "reservation_id", msg.ReservationID, "amount", msg.Amount.String())
		return nil
	case errors.Is(err, reservations.ErrAlreadyTerminal):
		h.log.Warn("payment for finished reservation", "payment_id", msg.PaymentID, "reservation_id", msg.ReservationID)
		return nil
	default:
		return err
	}
}

package payments

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentMessage is what the payment gateway publishes once it has settled a charge.
type PaymentMessage struct {
	PaymentID     string          `json:"paymentId"`
	ReservationID string          `json:"reservationId"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paidAt"`
}

func ParsePaymentMessage(value []byte) (*PaymentMessage, error) {
	var msg PaymentMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment message: %w", err)
	}
	if msg.ReservationID == "" {
		return nil, fmt.Errorf("payment message %q has no reservationId", msg.PaymentID)
	}
	return &msg, nil
}

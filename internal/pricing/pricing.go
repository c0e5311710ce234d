package pricing

import (
	"errors"
	"time"

	"parkly/internal/timerange"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is a decimal amount in the location's currency.
type Money = decimal.Decimal

var (
	ErrNonPositiveDuration = errors.New("duration must be positive")
	ErrNegativeRate        = errors.New("hourly rate cannot be negative")
)

// BillableHours rounds a duration up to whole hours; a partial hour bills as a full one.
func BillableHours(d time.Duration) int64 {
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}

// Price returns ceil(hours) * rate.
func Price(rate Money, r timerange.Range) (Money, error) {
	d := r.Duration()
	if d <= 0 {
		return decimal.Zero, ErrNonPositiveDuration
	}
	if rate.IsNegative() {
		return decimal.Zero, ErrNegativeRate
	}
	return rate.Mul(decimal.NewFromInt(BillableHours(d))), nil
}

// Calculator lets callers swap the pricing rule (e.g. in tests).
type Calculator interface {
	Price(rate Money, r timerange.Range) (Money, error)
}

type HourlyCalculator struct{}

func (HourlyCalculator) Price(rate Money, r timerange.Range) (Money, error) {
	return Price(rate, r)
}

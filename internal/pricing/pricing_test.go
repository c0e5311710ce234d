package pricing

import (
	"testing"
	"time"

	"parkly/internal/timerange"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(t *testing.T, d time.Duration) timerange.Range {
	t.Helper()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	r, err := timerange.New(start, start.Add(d))
	require.NoError(t, err)
	return r
}

func TestPriceRoundsUpToWholeHours(t *testing.T) {
	cases := []struct {
		d    time.Duration
		rate int64
		want int64
	}{
		{90 * time.Minute, 10000, 20000},
		{2 * time.Hour, 8000, 16000},
		{time.Hour, 8000, 8000},
		{time.Minute, 5000, 5000},
		{time.Hour + time.Second, 100, 200},
		{24 * time.Hour, 1000, 24000},
	}
	for _, tc := range cases {
		got, err := Price(decimal.NewFromInt(tc.rate), span(t, tc.d))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(tc.want).Equal(got), "%s at %d: got %s", tc.d, tc.rate, got)
	}
}

func TestPriceKeepsFractionalRates(t *testing.T) {
	got, err := HourlyCalculator{}.Price(decimal.RequireFromString("12.50"), span(t, 150*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "37.5", got.String())
}

func TestPriceRejectsBadInput(t *testing.T) {
	_, err := Price(decimal.NewFromInt(10), timerange.Range{})
	assert.ErrorIs(t, err, ErrNonPositiveDuration)

	_, err = Price(decimal.NewFromInt(-1), span(t, time.Hour))
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestBillableHours(t *testing.T) {
	assert.Equal(t, int64(0), BillableHours(0))
	assert.Equal(t, int64(1), BillableHours(time.Nanosecond))
	assert.Equal(t, int64(3), BillableHours(3*time.Hour))
}

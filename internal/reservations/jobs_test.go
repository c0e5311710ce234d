package reservations

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweep struct {
	Service
	runs atomic.Int32
}

func (s *countingSweep) Sweep(ctx context.Context) (SweepReport, error) {
	s.runs.Add(1)
	return SweepReport{}, nil
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(&countingSweep{}, "every now and then", time.Second)
	assert.Error(t, err)
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	svc := &countingSweep{}
	sweeper, err := NewSweeper(svc, "@every 1s", time.Second)
	require.NoError(t, err)

	sweeper.Start()
	assert.Eventually(t, func() bool { return svc.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
}

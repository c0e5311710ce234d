package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"parkly/internal/reservations"
	"parkly/internal/spots"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() reservations.Event {
	start := time.Date(2030, 1, 10, 14, 0, 0, 0, time.UTC)
	return reservations.Event{
		Type: reservations.EventCreated,
		Reservation: reservations.Reservation{
			ID:         uuid.MustParse("7f1c2f0e-9d4b-4c1e-8a57-0a4c5e1f9b21"),
			UserID:     "u1",
			LocationID: 3,
			SpotID:     42,
			SpotNumber: "A-04",
			Zone:       spots.ZoneRegular,
			VehicleID:  9,
			StartTime:  start,
			EndTime:    start.Add(2 * time.Hour),
			Status:     reservations.StatusPending,
			TotalCost:  decimal.NewFromInt(16000),
		},
		Actor:      "u1",
		OccurredAt: start.Add(-time.Hour),
	}
}

func TestEventProducer_PublishReservationEvent(t *testing.T) {
	mock := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "reservations.events" {
			return errors.New("wrong topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return errors.New("expected spot id as key, got " + string(key))
		}
		return nil
	})

	producer := NewEventProducer(mock, "reservations.events")
	require.NoError(t, producer.PublishReservationEvent(context.Background(), sampleEvent()))
	require.NoError(t, producer.Close())
}

func TestEventProducer_SendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewEventProducer(mock, "reservations.events")
	err := producer.PublishReservationEvent(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestReservationMessage_JSON(t *testing.T) {
	body, err := NewReservationMessage(sampleEvent()).ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "reservation.created", decoded["eventType"])
	assert.Equal(t, "7f1c2f0e-9d4b-4c1e-8a57-0a4c5e1f9b21", decoded["reservationId"])
	assert.Equal(t, "A-04", decoded["spotNumber"])
	assert.Equal(t, "pending", decoded["status"])
	assert.Equal(t, "2030-01-10T14:00:00Z", decoded["startTime"])
}

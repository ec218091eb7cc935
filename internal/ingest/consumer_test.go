package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeflux/analytics/internal/models"
)

type recordingApplier struct {
	batches [][]models.EventDetail
	err     error
}

func (r *recordingApplier) ApplyEventBatch(_ context.Context, details []models.EventDetail) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, details)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewConsumer_Validation(t *testing.T) {
	applier := &recordingApplier{}
	logger := quietLogger()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     Config{Brokers: []string{"localhost:9092"}, Topic: "device-state-events", GroupID: "analytics"},
			wantErr: false,
		},
		{
			name:    "no brokers",
			cfg:     Config{Topic: "device-state-events", GroupID: "analytics"},
			wantErr: true,
		},
		{
			name:    "no topic",
			cfg:     Config{Brokers: []string{"localhost:9092"}, GroupID: "analytics"},
			wantErr: true,
		},
		{
			name:    "no group",
			cfg:     Config{Brokers: []string{"localhost:9092"}, Topic: "device-state-events"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, err := NewConsumer(tt.cfg, applier, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, consumer.Close())
		})
	}
}

func TestConsumer_Handle(t *testing.T) {
	applier := &recordingApplier{}
	c := &Consumer{applier: applier, logger: quietLogger()}
	ctx := context.Background()

	c.handle(ctx, kafka.Message{Value: []byte(`[{"deviceId":1,"open":true},{"deviceId":2,"open":false}]`)})
	require.Len(t, applier.batches, 1)
	assert.Equal(t, []models.EventDetail{
		{DeviceID: 1, Open: true},
		{DeviceID: 2, Open: false},
	}, applier.batches[0])

	// Malformed payloads are skipped without reaching the applier.
	c.handle(ctx, kafka.Message{Value: []byte(`{"not":"an array"`)})
	assert.Len(t, applier.batches, 1)
}

func TestConsumer_HandleApplyError(t *testing.T) {
	applier := &recordingApplier{err: errors.New("transaction aborted")}
	c := &Consumer{applier: applier, logger: quietLogger()}

	// Apply failures must not panic or accumulate state.
	c.handle(context.Background(), kafka.Message{Value: []byte(`[{"deviceId":1,"open":true}]`)})
	assert.Empty(t, applier.batches)
}

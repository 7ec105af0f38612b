// Package kafka publishes newly appended readings to a topic so downstream
// consumers do not have to tail the CSV file.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/config"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
)

// Writer produces reading messages to a Kafka topic. It implements
// pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured readings topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes readings in a single WriteMessages
// call. Messages are keyed by dedup key so log-compacted topics retain one
// copy per measurement occurrence.
func (w *Writer) PublishBatch(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Reading into a Kafka message.
func serializeToMessage(r domain.Reading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.DedupKey()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station_id", Value: []byte(r.StationID)},
			{Key: "collected_at", Value: []byte(r.CollectedAt.Format(time.RFC3339))},
		},
	}, nil
}

package deadletter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commerce-sync-service/config"
	"commerce-sync-service/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// envelope is the dead-letter record published per failed event. The
// original event travels intact so an operator can replay it.
type envelope struct {
	Event        *domain.Event `json:"event"`
	Cause        string        `json:"cause"`
	DeadLettered time.Time     `json:"dead_lettered_at"`
}

// KafkaSink implements ports.DeadLetterSink on a Kafka topic. Messages
// are keyed by event ID so redeliveries of the same event land in the
// same partition.
type KafkaSink struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// NewKafkaSink creates a Kafka-backed dead-letter sink.
func NewKafkaSink(cfg config.DeadLetterConfig, log zerolog.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSink{writer: w, log: log}
}

// Publish writes the failed event and its cause to the dead-letter topic.
func (s *KafkaSink) Publish(ctx context.Context, event *domain.Event, cause error) error {
	value, err := json.Marshal(envelope{
		Event:        event,
		Cause:        cause.Error(),
		DeadLettered: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dead-letter envelope: %w", err)
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write dead-letter message: %w", err)
	}

	s.log.Info().
		Str("event_id", event.ID).
		Str("topic", s.writer.Topic).
		Msg("event dead-lettered")
	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "boxoffice.seat-checks"

// MessageWriter is the part of *kafka.Writer the dispatcher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher hands seat checks to an external scheduler through a Kafka
// topic. Messages are keyed by task name, so a compacted topic keeps one
// entry per check.
type KafkaDispatcher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

func NewKafkaDispatcher(writer MessageWriter) *KafkaDispatcher {
	return &KafkaDispatcher{writer: writer}
}

func (d *KafkaDispatcher) RegisterOneShot(ctx context.Context, task domain.SeatCheckTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.Name),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "run-at", Value: []byte(task.At.UTC().Format(time.RFC3339))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", task.Name, err)
	}

	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}

package kafka

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andreyxaxa/Image-Moderator/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

// DeliveryAttemptsHeader counts how many times the queue dispatcher has
// redelivered a message. Absent on first delivery.
const DeliveryAttemptsHeader = "delivery_attempts"

type EventConsumer struct {
	*consumer.Consumer
}

func NewEventConsumer(consumer *consumer.Consumer) *EventConsumer {
	return &EventConsumer{consumer}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *EventConsumer) CommitEvents(ctx context.Context, events ...kafka.Message) error {
	err := ec.Reader.CommitMessages(ctx, events...)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvents - ec.Reader.CommitMessages: %w", err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	err := ec.Consumer.Close()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}

// Attribute returns the named header value, or "" when absent.
func Attribute(event kafka.Message, key string) string {
	for _, h := range event.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}

	return ""
}

// DeliveryAttempts returns how many deliveries this message has already had.
// The first delivery counts as 1.
func DeliveryAttempts(event kafka.Message) int {
	raw := Attribute(event, DeliveryAttemptsHeader)
	if raw == "" {
		return 1
	}

	attempts, err := strconv.Atoi(raw)
	if err != nil || attempts < 1 {
		return 1
	}

	return attempts
}

package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Moderator/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

type EventProducer struct {
	*producer.Producer
}

func NewEventProducer(producer *producer.Producer) *EventProducer {
	return &EventProducer{producer}
}

// Publish writes one message with its routing attributes carried as headers.
func (ep *EventProducer) Publish(ctx context.Context, topic string, key, value []byte, attrs map[string]string) error {
	msg := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: HeadersFromAttributes(attrs),
	}

	err := ep.Writer.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("EventProducer - Publish - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

// Forward re-publishes an existing message to another topic, preserving its
// headers. extra overrides/extends the carried attributes.
func (ep *EventProducer) Forward(ctx context.Context, topic string, event kafka.Message, extra map[string]string) error {
	attrs := AttributesFromHeaders(event.Headers)
	for k, v := range extra {
		attrs[k] = v
	}

	err := ep.Publish(ctx, topic, event.Key, event.Value, attrs)
	if err != nil {
		return fmt.Errorf("EventProducer - Forward: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}

func HeadersFromAttributes(attrs map[string]string) []kafka.Header {
	if len(attrs) == 0 {
		return nil
	}

	headers := make([]kafka.Header, 0, len(attrs))
	for k, v := range attrs {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return headers
}

func AttributesFromHeaders(headers []kafka.Header) map[string]string {
	attrs := make(map[string]string, len(headers))
	for _, h := range headers {
		attrs[h.Key] = string(h.Value)
	}

	return attrs
}
